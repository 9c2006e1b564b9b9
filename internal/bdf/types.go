// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 * Modified for 24-bit BDF samples and trigger channels.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// internal/bdf/types.go

// Package bdf reads and writes EDF and BioSemi BDF recordings.
//
// Both formats share the same ASCII header; BDF stores 24-bit samples where
// EDF stores 16-bit ones.
package bdf

import (
	"strings"
	"time"
)

// Format is the on-disk sample encoding.
type Format int

const (
	// EDF stores 16-bit little-endian samples.
	EDF Format = iota
	// BDF stores 24-bit little-endian samples.
	BDF
)

const (
	// VersionEDF is the version field of an EDF/EDF+ file.
	VersionEDF = "0"
	// VersionBDF is the version field of a BioSemi BDF file: 0xFF then "BIOSEMI".
	VersionBDF = "\xffBIOSEMI"
	// Reserved24Bit marks 24-bit data in the reserved header field.
	Reserved24Bit = "24BIT"
)

// SampleWidth is the number of bytes per sample.
func (f Format) SampleWidth() int {
	if f == BDF {
		return 3
	}
	return 2
}

func (f Format) String() string {
	if f == BDF {
		return "BDF"
	}
	return "EDF"
}

// Header is the fixed part of an EDF/BDF file plus one Signal per channel.
type Header struct {
	Version            string        // "0" for EDF, "\xffBIOSEMI" for BDF
	PatientID          string        // Local patient identification
	RecordingID        string        // Local recording identification
	StartTime          time.Time     // Start of recording
	HeaderBytes        int           // Number of bytes in the header
	Reserved           string        // "24BIT" for BDF, "EDF+C"/"EDF+D" for EDF+
	DataRecords        int           // Number of data records, -1 if unknown
	DataRecordDuration time.Duration // Duration of one data record
	Signals            []Signal      // One entry per channel
}

// Signal describes one channel.
type Signal struct {
	Label             string  // e.g. "Fp1" or "Status"
	TransducerType    string  // e.g. "Active Electrode"
	PhysicalDimension string  // e.g. "uV"
	PhysicalMin       float64 // Minimum physical value
	PhysicalMax       float64 // Maximum physical value
	DigitalMin        int     // Minimum digital value
	DigitalMax        int     // Maximum digital value
	Prefiltering      string  // e.g. "HP:DC; LP:417 Hz"
	SamplesPerRecord  int     // Number of samples per data record
	Reserved          string
}

// Format reports whether the header describes an EDF or a BDF file.
func (h *Header) Format() Format {
	if h.Version == VersionBDF || strings.HasPrefix(h.Reserved, Reserved24Bit) {
		return BDF
	}
	return EDF
}

// SampleRate returns the sampling rate of signal i in Hz.
func (h *Header) SampleRate(i int) float64 {
	secs := h.DataRecordDuration.Seconds()
	if i < 0 || i >= len(h.Signals) || secs <= 0 {
		return 0
	}
	return float64(h.Signals[i].SamplesPerRecord) / secs
}

// recordSize is the byte length of one data record.
func (h *Header) recordSize() int {
	width := h.Format().SampleWidth()
	size := 0
	for _, s := range h.Signals {
		size += s.SamplesPerRecord * width
	}
	return size
}

// signalOffset is the byte offset of signal i within a data record.
func (h *Header) signalOffset(i int) int {
	width := h.Format().SampleWidth()
	off := 0
	for _, s := range h.Signals[:i] {
		off += s.SamplesPerRecord * width
	}
	return off
}
