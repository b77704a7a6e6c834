package reference

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/speps/go-hashids/v2"
)

// MaxLength is the longest reference the gateway accepts (INS-17).
const MaxLength = 20

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var ErrPrefixTooLong = errors.New("reference prefix leaves no room for a suffix")

// Generator builds third-party references such as PAYMOZ7KQ2XW9A.
type Generator struct {
	prefix string
	hd     *hashids.HashID
}

func NewGenerator(prefix, salt string) (*Generator, error) {
	if len(prefix) > MaxLength-8 {
		return nil, ErrPrefixTooLong
	}

	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	data.Alphabet = alphabet

	hd, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("hashids: %w", err)
	}

	return &Generator{prefix: prefix, hd: hd}, nil
}

func (g *Generator) Generate() (string, error) {
	seed := int64(uuid.New().ID())

	suffix, err := g.hd.EncodeInt64([]int64{seed})
	if err != nil {
		return "", fmt.Errorf("encode reference: %w", err)
	}

	ref := g.prefix + suffix
	if len(ref) > MaxLength {
		ref = ref[:MaxLength]
	}
	return ref, nil
}
