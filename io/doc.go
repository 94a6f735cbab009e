// Package io provides program image I/O for the uvm toolchain.
package io
