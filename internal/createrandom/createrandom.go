// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package createrandom prints random digits, letters or hex from crypto/rand.
package createrandom

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// MaxAmount is the exclusive upper bound on how much can be generated at once.
const MaxAmount = 1 << 31

const (
	digits   = "0123456789"
	letters  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	alphanum = digits + letters
)

var (
	// ErrAmount is returned for an amount that is not a whole number between 1 and MaxAmount.
	ErrAmount = errors.New("invalid amount")
	// ErrAmountTooLarge is returned for an amount of MaxAmount or more.
	ErrAmountTooLarge = errors.New("amount is too large")
)

// Kind names what is generated.
type Kind string

// Kinds.
const (
	Numbers  Kind = "numbers"
	Letters  Kind = "letters"
	AlphaNum Kind = "alphanum"
	Hex      Kind = "hex"
)

// Reader is the entropy source.
var Reader io.Reader = rand.Reader

// ParseAmount checks a command line amount.
func ParseAmount(s string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrAmount, s)
	}

	switch {
	case n <= 0:
		return 0, fmt.Errorf("%w: %d must be greater than zero", ErrAmount, n)
	case n >= MaxAmount:
		return 0, ErrAmountTooLarge
	}

	return int(n), nil
}

// chunkSize bounds the memory used per write when streaming output.
const chunkSize = 32 * 1024

// Generate returns n random characters of the given kind. Hex returns n
// random bytes encoded as 2n hex digits.
func Generate(kind Kind, n int) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, kind, n); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Write streams what Generate would return to w, at most chunkSize bytes at a time.
func Write(w io.Writer, kind Kind, n int) error {
	switch kind {
	case Numbers:
		return pick(w, digits, n)
	case Letters:
		return pick(w, letters, n)
	case AlphaNum:
		return pick(w, alphanum, n)
	case Hex:
		return hexBytes(w, n)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
}

func hexBytes(w io.Writer, n int) error {
	raw := make([]byte, min(n, chunkSize/2))
	enc := make([]byte, 2*len(raw))

	for n > 0 {
		b := raw[:min(n, len(raw))]
		if _, err := io.ReadFull(Reader, b); err != nil {
			return err
		}

		e := enc[:hex.Encode(enc, b)]
		if _, err := w.Write(e); err != nil {
			return err
		}

		n -= len(b)
	}

	return nil
}

func pick(w io.Writer, alphabet string, n int) error {
	limit := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, 0, min(n, chunkSize))

	for i := range n {
		idx, err := rand.Int(Reader, limit)
		if err != nil {
			return err
		}

		buf = append(buf, alphabet[idx.Int64()])

		if len(buf) == cap(buf) || i == n-1 {
			if _, err := w.Write(buf); err != nil {
				return err
			}

			buf = buf[:0]
		}
	}

	return nil
}
