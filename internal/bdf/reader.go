// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 * Modified for 24-bit BDF samples and trigger channels.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// internal/bdf/reader.go
package bdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrSignalNotFound indicates no channel carries the requested label
	ErrSignalNotFound = errors.New("signal not found")
	// ErrSignalIndex indicates a signal index outside the header
	ErrSignalIndex = errors.New("signal index out of range")
	// ErrBadHeader indicates a header that cannot describe any data
	ErrBadHeader = errors.New("malformed header")
)

// Reader reads signals from an EDF or BDF file.
type Reader struct {
	r   io.ReadSeeker
	hdr *Header
}

// Open parses the header of an EDF/BDF file.
func Open(r io.ReadSeeker) (*Reader, error) {
	reader := bufio.NewReader(r)

	b := make([]byte, 256)
	if _, err := io.ReadFull(reader, b); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	hdr := &Header{}
	hdr.Version = strings.TrimSpace(string(b[0:8]))
	hdr.PatientID = strings.TrimSpace(string(b[8:88]))
	hdr.RecordingID = strings.TrimSpace(string(b[88:168]))

	startDate, err := time.Parse("02.01.06", strings.TrimSpace(string(b[168:176])))
	if err != nil {
		return nil, fmt.Errorf("error parsing start date: %w", err)
	}
	startTime, err := time.Parse("15.04.05", strings.TrimSpace(string(b[176:184])))
	if err != nil {
		return nil, fmt.Errorf("error parsing start time: %w", err)
	}
	hdr.StartTime = time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC)

	if hdr.HeaderBytes, err = strconv.Atoi(strings.TrimSpace(string(b[184:192]))); err != nil {
		return nil, fmt.Errorf("error parsing header bytes: %w", err)
	}
	hdr.Reserved = strings.TrimSpace(string(b[192:236]))
	if hdr.DataRecords, err = strconv.Atoi(strings.TrimSpace(string(b[236:244]))); err != nil {
		return nil, fmt.Errorf("error parsing number of data records: %w", err)
	}
	hdr.DataRecordDuration, err = time.ParseDuration(strings.TrimSpace(string(b[244:252])) + "s")
	if err != nil {
		return nil, fmt.Errorf("error parsing data record duration: %w", err)
	}
	signalCount, err := strconv.Atoi(strings.TrimSpace(string(b[252:256])))
	if err != nil {
		return nil, fmt.Errorf("error parsing signal count: %w", err)
	}
	if signalCount <= 0 {
		return nil, fmt.Errorf("%w: %d signals", ErrBadHeader, signalCount)
	}

	hdr.Signals = make([]Signal, signalCount)
	fields := []struct {
		width int
		set   func(s *Signal, v string)
	}{
		{16, func(s *Signal, v string) { s.Label = v }},
		{80, func(s *Signal, v string) { s.TransducerType = v }},
		{8, func(s *Signal, v string) { s.PhysicalDimension = v }},
		{8, func(s *Signal, v string) { s.PhysicalMin = parseFloat(v) }},
		{8, func(s *Signal, v string) { s.PhysicalMax = parseFloat(v) }},
		{8, func(s *Signal, v string) { s.DigitalMin = parseInt(v) }},
		{8, func(s *Signal, v string) { s.DigitalMax = parseInt(v) }},
		{80, func(s *Signal, v string) { s.Prefiltering = v }},
		{8, func(s *Signal, v string) { s.SamplesPerRecord = parseInt(v) }},
		{32, func(s *Signal, v string) { s.Reserved = v }},
	}
	for _, f := range fields {
		buf := make([]byte, f.width)
		for i := range hdr.Signals {
			if _, err := io.ReadFull(reader, buf); err != nil {
				return nil, fmt.Errorf("error reading signal headers: %w", err)
			}
			f.set(&hdr.Signals[i], strings.TrimSpace(string(buf)))
		}
	}

	return &Reader{r: r, hdr: hdr}, nil
}

// Header returns the parsed header.
func (er *Reader) Header() *Header {
	return er.hdr
}

// SignalIndex finds a channel by label, ignoring case.
func (er *Reader) SignalIndex(label string) (int, error) {
	for i, s := range er.hdr.Signals {
		if strings.EqualFold(s.Label, label) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrSignalNotFound, label)
}

// Digital reads every digital sample of signal i, sign-extended.
func (er *Reader) Digital(i int) ([]int32, error) {
	if i < 0 || i >= len(er.hdr.Signals) {
		return nil, ErrSignalIndex
	}
	spr := er.hdr.Signals[i].SamplesPerRecord
	recordSize := er.hdr.recordSize()
	if spr <= 0 || recordSize <= 0 {
		return nil, fmt.Errorf("%w: no samples per record", ErrBadHeader)
	}

	records, err := er.recordCount(recordSize)
	if err != nil {
		return nil, err
	}

	width := er.hdr.Format().SampleWidth()
	offset := er.hdr.signalOffset(i)
	buf := make([]byte, spr*width)
	out := make([]int32, 0, records*spr)

	for rec := 0; rec < records; rec++ {
		pos := int64(er.hdr.HeaderBytes) + int64(rec)*int64(recordSize) + int64(offset)
		if _, err := er.r.Seek(pos, io.SeekStart); err != nil {
			return nil, fmt.Errorf("error seeking to record %d: %w", rec, err)
		}
		if _, err := io.ReadFull(er.r, buf); err != nil {
			return nil, fmt.Errorf("error reading record %d: %w", rec, err)
		}
		for s := 0; s < spr; s++ {
			out = append(out, decodeSample(buf[s*width:(s+1)*width]))
		}
	}
	return out, nil
}

// Trigger reads signal i as a trigger channel. BDF values are returned as
// unsigned 24-bit words; EDF values as signed 16-bit.
func (er *Reader) Trigger(i int) ([]int32, error) {
	samples, err := er.Digital(i)
	if err != nil {
		return nil, err
	}
	if er.hdr.Format() == BDF {
		for j, v := range samples {
			samples[j] = v & 0xFFFFFF
		}
	}
	return samples, nil
}

// recordCount resolves an unknown (-1) record count from the file size and
// rejects a declared count the file cannot hold.
func (er *Reader) recordCount(recordSize int) (int, error) {
	end, err := er.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("error seeking to end: %w", err)
	}
	avail := max(end-int64(er.hdr.HeaderBytes), 0)
	if er.hdr.DataRecords < 0 {
		return int(avail / int64(recordSize)), nil
	}
	// a trailing partial record is left for the read loop to report
	held := (avail + int64(recordSize) - 1) / int64(recordSize)
	if int64(er.hdr.DataRecords) > held {
		return 0, fmt.Errorf("%w: header declares %d data records, file holds at most %d",
			ErrBadHeader, er.hdr.DataRecords, held)
	}
	return er.hdr.DataRecords, nil
}

// decodeSample decodes one little-endian two's complement sample of 2 or 3 bytes.
func decodeSample(b []byte) int32 {
	if len(b) == 3 {
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v -= 1 << 24
		}
		return v
	}
	return int32(int16(uint16(b[0]) | uint16(b[1])<<8))
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return f
}

func parseInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
