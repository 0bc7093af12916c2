package ident

import (
	"crypto/rand"
	"errors"
)

const (
	alphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	defaultLength = 16

	// mask covers the smallest power of two above len(alphabet); byte
	// values masked above the alphabet length are rejected and redrawn
	// to keep the distribution uniform.
	mask = 63
)

var ErrInvalidLength = errors.New("id length must be positive")

// New returns a random identifier of the default length, suitable for
// request correlation.
func New() (string, error) {
	return NewWithLength(defaultLength)
}

// NewWithLength returns a random identifier of the given length.
func NewWithLength(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	id := make([]byte, length)
	buffer := make([]byte, length*2)

	for position := 0; position < length; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for _, b := range buffer {
			index := b & mask
			if int(index) < len(alphabet) {
				id[position] = alphabet[index]
				position++
				if position == length {
					break
				}
			}
		}
	}

	return string(id), nil
}
