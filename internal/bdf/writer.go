// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 * Modified for 24-bit BDF samples and trigger channels.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// internal/bdf/writer.go
package bdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Writer writes EDF or BDF files. The format follows hdr.Format().
type Writer struct {
	w           io.WriteSeeker
	hdr         *Header
	dataRecords int // Number of data records written so far.
}

// Create writes a provisional header and returns a writer for data records.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	if len(hdr.Signals) == 0 {
		return nil, fmt.Errorf("%w: no signals", ErrBadHeader)
	}
	hdr.DataRecords = -1 // unknown until Close
	hdr.HeaderBytes = 256 * (len(hdr.Signals) + 1)

	ew := &Writer{w: w, hdr: &hdr}
	if err := ew.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}
	return ew, nil
}

// WriteRecord appends one data record of digital samples, one slice per signal.
func (ew *Writer) WriteRecord(signals [][]int32) error {
	if len(signals) != len(ew.hdr.Signals) {
		return fmt.Errorf("expected %d signals, got %d", len(ew.hdr.Signals), len(signals))
	}
	for i, s := range signals {
		if len(s) != ew.hdr.Signals[i].SamplesPerRecord {
			return fmt.Errorf("signal %d: expected %d samples, got %d", i, ew.hdr.Signals[i].SamplesPerRecord, len(s))
		}
	}

	width := ew.hdr.Format().SampleWidth()
	writer := bufio.NewWriter(ew.w)
	buf := make([]byte, width)
	for _, s := range signals {
		for _, v := range s {
			encodeSample(buf, v)
			if _, err := writer.Write(buf); err != nil {
				return err
			}
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	ew.dataRecords++
	return nil
}

// Close rewrites the header with the final number of data records.
func (ew *Writer) Close() error {
	ew.hdr.DataRecords = ew.dataRecords
	if err := ew.writeHeader(); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	return nil
}

func (ew *Writer) writeHeader() error {
	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	h := ew.hdr
	writer := bufio.NewWriter(ew.w)
	// bufio.Writer errors are sticky; Flush reports the first one
	field := func(v string, width int) {
		_, _ = writer.WriteString(pad(v, width))
	}

	version := h.Version
	if version == "" {
		version = VersionEDF
	}
	field(version, 8)
	field(h.PatientID, 80)
	field(h.RecordingID, 80)
	field(h.StartTime.Format("02.01.06"), 8)
	field(h.StartTime.Format("15.04.05"), 8)
	field(strconv.Itoa(h.HeaderBytes), 8)
	field(h.Reserved, 44)
	field(strconv.Itoa(h.DataRecords), 8)
	field(strconv.FormatFloat(h.DataRecordDuration.Seconds(), 'f', -1, 64), 8)
	field(strconv.Itoa(len(h.Signals)), 4)

	for _, s := range h.Signals {
		field(s.Label, 16)
	}
	for _, s := range h.Signals {
		field(s.TransducerType, 80)
	}
	for _, s := range h.Signals {
		field(s.PhysicalDimension, 8)
	}
	for _, s := range h.Signals {
		field(strconv.FormatFloat(s.PhysicalMin, 'f', -1, 64), 8)
	}
	for _, s := range h.Signals {
		field(strconv.FormatFloat(s.PhysicalMax, 'f', -1, 64), 8)
	}
	for _, s := range h.Signals {
		field(strconv.Itoa(s.DigitalMin), 8)
	}
	for _, s := range h.Signals {
		field(strconv.Itoa(s.DigitalMax), 8)
	}
	for _, s := range h.Signals {
		field(s.Prefiltering, 80)
	}
	for _, s := range h.Signals {
		field(strconv.Itoa(s.SamplesPerRecord), 8)
	}
	for _, s := range h.Signals {
		field(s.Reserved, 32)
	}

	return writer.Flush()
}

// pad left-aligns v in exactly width bytes, truncating if needed.
func pad(v string, width int) string {
	if len(v) >= width {
		return v[:width]
	}
	b := make([]byte, width)
	copy(b, v)
	for i := len(v); i < width; i++ {
		b[i] = ' '
	}
	return string(b)
}

// encodeSample writes v little-endian into len(buf) bytes.
func encodeSample(buf []byte, v int32) {
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
}

// WriteFile writes whole signals to path, split into data records of
// SamplesPerRecord samples each. Every signal must hold the same number of
// records.
func WriteFile(path string, hdr Header, signals [][]int32) (err error) {
	if len(signals) != len(hdr.Signals) {
		return fmt.Errorf("expected %d signals, got %d", len(hdr.Signals), len(signals))
	}
	records := -1
	for i, s := range hdr.Signals {
		if s.SamplesPerRecord <= 0 || len(signals[i])%s.SamplesPerRecord != 0 {
			return fmt.Errorf("signal %d: %d samples is not a whole number of records", i, len(signals[i]))
		}
		n := len(signals[i]) / s.SamplesPerRecord
		if records >= 0 && n != records {
			return fmt.Errorf("signal %d: %d records, want %d", i, n, records)
		}
		records = n
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	ew, err := Create(f, hdr)
	if err != nil {
		return err
	}
	record := make([][]int32, len(signals))
	for rec := 0; rec < records; rec++ {
		for i, s := range hdr.Signals {
			spr := s.SamplesPerRecord
			record[i] = signals[i][rec*spr : (rec+1)*spr]
		}
		if err := ew.WriteRecord(record); err != nil {
			return err
		}
	}
	return ew.Close()
}
