package io

import (
	"io"
	"io/fs"
)

// Rom is a read-only program image: the binary produced by the assembler
// and executed by the emulator.
type Rom struct {
	Data []byte
}

// Unmarshal replaces the image with the full contents of the reader.
func (rom *Rom) Unmarshal(r io.Reader) (err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}
	rom.Data = data
	return
}

// Load replaces the image with the named file of the file system.
func (rom *Rom) Load(filesys fs.FS, name string) (err error) {
	data, err := fs.ReadFile(filesys, name)
	if err != nil {
		return
	}
	rom.Data = data
	return
}

// Marshal writes the image to the writer.
func (rom *Rom) Marshal(w io.Writer) (err error) {
	_, err = w.Write(rom.Data)
	return
}

// Len returns the image size in bytes.
func (rom *Rom) Len() int {
	return len(rom.Data)
}
