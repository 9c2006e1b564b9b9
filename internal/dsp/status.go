// internal/dsp/status.go
package dsp

// StatusOffset is subtracted from every BioSemi Status sample so the trigger
// byte lands where an 8-bit stim channel would put it: 127*127 - 1.
// The first Status value of a recording is typically exactly this offset.
const StatusOffset = 127*127 - 1

// CorrectStatus maps a raw 24-bit Status channel onto the integer code stream
// expected by the Detector. The returned slice has the same length and order
// as raw. Values are not clipped or wrapped.
func CorrectStatus(raw []int32) []int32 {
	out := make([]int32, len(raw))
	for i, v := range raw {
		out[i] = v - StatusOffset
	}
	return out
}

// RestoreStatus is the inverse of CorrectStatus.
func RestoreStatus(corrected []int32) []int32 {
	out := make([]int32, len(corrected))
	for i, v := range corrected {
		out[i] = v + StatusOffset
	}
	return out
}
