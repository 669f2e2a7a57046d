package audio

import (
	"encoding/binary"
	"math"
)

// TargetRate is the canonical sample rate the recognizer expects.
const TargetRate = 16000

// Quantize converts one float sample to 16-bit signed PCM. Input is clamped
// to [-1, 1] before quantization. Negative samples scale by 32768 and
// positive ones by 32767 so both ends of the int16 range are reachable.
func Quantize(sample float32) int16 {
	if sample > 1.0 {
		sample = 1.0
	} else if sample < -1.0 {
		sample = -1.0
	}
	if sample < 0 {
		return int16(sample * 32768)
	}
	return int16(sample * 32767)
}

// Resample converts mono float samples at nativeRate down to TargetRate
// 16-bit PCM. When the rates already match it is a plain quantization pass.
// Otherwise each output sample is the average of the native samples whose
// index falls in [round(i*ratio), round((i+1)*ratio)), a box filter, which
// is adequate for speech.
func Resample(input []float32, nativeRate int) []int16 {
	if nativeRate == TargetRate {
		output := make([]int16, len(input))
		for i, s := range input {
			output[i] = Quantize(s)
		}
		return output
	}

	ratio := float64(nativeRate) / float64(TargetRate)
	outputLen := int(math.Floor(float64(len(input)) / ratio))
	output := make([]int16, outputLen)

	for i := 0; i < outputLen; i++ {
		start := int(math.Round(float64(i) * ratio))
		end := int(math.Round(float64(i+1) * ratio))
		if end > len(input) {
			end = len(input)
		}
		if start >= end {
			output[i] = Quantize(input[min(start, len(input)-1)])
			continue
		}

		var sum float64
		for j := start; j < end; j++ {
			sum += float64(input[j])
		}
		output[i] = Quantize(float32(sum / float64(end-start)))
	}

	return output
}

// MixToMono averages interleaved multi-channel samples down to one channel.
func MixToMono(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += interleaved[i*channels+ch]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}

// PCMBytes serializes samples as little-endian 16-bit PCM.
func PCMBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// PCMBytesToInt16 is the inverse of PCMBytes.
func PCMBytesToInt16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := 0; i < len(samples); i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}
