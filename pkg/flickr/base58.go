package flickr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Base58Alphabet is Flickr's short-URL alphabet. It omits 0, O, I and l.
const Base58Alphabet = "123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// ShortURLBase prefixes every encoded photo id.
const ShortURLBase = "https://flic.kr/p/"

// ErrInvalidBase58 is returned for input outside Base58Alphabet.
var ErrInvalidBase58 = errors.New("invalid base58 string")

var base58Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(Base58Alphabet); i++ {
		idx[Base58Alphabet[i]] = int8(i)
	}
	return idx
}()

// EncodeBase58 encodes n with Base58Alphabet. Zero encodes as "".
func EncodeBase58(n uint64) string {
	var buf [11]byte // 58^11 > 2^64
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = Base58Alphabet[n%58]
		n /= 58
	}
	return string(buf[i:])
}

// DecodeBase58 is the inverse of EncodeBase58.
func DecodeBase58(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidBase58)
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		d := base58Index[s[i]]
		if d < 0 {
			return 0, fmt.Errorf("%w: character %q at %d", ErrInvalidBase58, s[i], i)
		}
		if n > (^uint64(0)-uint64(d))/58 {
			return 0, fmt.Errorf("%w: overflows uint64", ErrInvalidBase58)
		}
		n = n*58 + uint64(d)
	}
	return n, nil
}

// ShortURL returns the flic.kr short link for a numeric photo id.
func ShortURL(photoID string) (string, error) {
	n, err := strconv.ParseUint(photoID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("photo id %q: %w", photoID, err)
	}
	return ShortURLBase + EncodeBase58(n), nil
}

// PhotoIDFromShortURL decodes a flic.kr link, or a bare encoded id, back
// to the numeric photo id.
func PhotoIDFromShortURL(short string) (string, error) {
	code := strings.TrimPrefix(strings.TrimRight(short, "/"), ShortURLBase)
	n, err := DecodeBase58(code)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(n, 10), nil
}
