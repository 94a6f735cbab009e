// Package translate formats user-visible messages for the uvm toolchain
// in the language of the current locale.
package translate

import (
	"log"
	"os"
	"sync/atomic"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LANG_ENV overrides the detected OS locale when set.
const LANG_ENV = "UVM_LANG"

var printer atomic.Pointer[message.Printer]

func init() {
	var locales []string
	if lang, ok := os.LookupEnv(LANG_ENV); ok && len(lang) != 0 {
		locales = []string{lang}
	} else {
		var err error
		locales, err = locale.GetLocales()
		if err != nil {
			log.Printf("uvm: locale: %v", err)
		}
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	SetLanguage(message.MatchLanguage(locales...))
}

// SetLanguage replaces the language used by From.
func SetLanguage(tag language.Tag) {
	printer.Store(message.NewPrinter(tag))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Load().Sprintf(key, args...)
}
