package emulator

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/uvmtools/uvm/cpu"
)

// Range is an inclusive range of memory indices observed by the trace.
type Range struct {
	Start int
	End   int
}

// ParseRange parses a "start:end" range and validates it.
func ParseRange(text string) (r Range, err error) {
	start, end, ok := strings.Cut(text, ":")
	if !ok {
		err = ErrRange(text)
		return
	}

	r.Start, err = strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		err = ErrRange(text)
		return
	}
	r.End, err = strconv.Atoi(strings.TrimSpace(end))
	if err != nil {
		err = ErrRange(text)
		return
	}

	err = r.Validate()
	return
}

// Validate checks that the range is within memory and start <= end.
func (r Range) Validate() error {
	if r.Start < 0 || r.Start >= cpu.MEMORY_SIZE ||
		r.End < 0 || r.End >= cpu.MEMORY_SIZE ||
		r.Start > r.End {
		return ErrRange(r.String())
	}
	return nil
}

// Len returns the number of observed cells.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// All iterates over the observed memory indices.
func (r Range) All() iter.Seq[int] {
	return func(yield func(addr int) bool) {
		for addr := r.Start; addr <= r.End; addr++ {
			if !yield(addr) {
				return
			}
		}
	}
}

// String returns the range as "start:end".
func (r Range) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Set parses a "start:end" range, so a Range can be used as a flag value.
func (r *Range) Set(text string) (err error) {
	parsed, err := ParseRange(text)
	if err != nil {
		return
	}
	*r = parsed
	return
}

// Type names the flag value type.
func (r *Range) Type() string {
	return "start:end"
}
