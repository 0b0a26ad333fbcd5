package main

const (
	binarySampleSize       = 4096
	binaryControlThreshold = 0.10
)

// isBinaryContent decides from a bounded prefix whether content is binary
// and therefore useless as prompt context. A NUL byte in the sample is
// conclusive; otherwise the sample is binary when more than 10% of it is
// control characters outside tab/LF/CR (DEL counts as control). Empty
// content is never binary.
func isBinaryContent(content string) bool {
	if content == "" {
		return false
	}
	sample := content
	if len(sample) > binarySampleSize {
		sample = sample[:binarySampleSize]
	}

	control := 0
	for i := 0; i < len(sample); i++ {
		b := sample[i]
		if b == 0 {
			return true
		}
		if (b < 32 && b != '\t' && b != '\n' && b != '\r') || b == 127 {
			control++
		}
	}
	return float64(control)/float64(len(sample)) > binaryControlThreshold
}
