package asset

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const randomLen = 12

// KeyGen builds object keys of the form <folder>/<unix millis>_<random>.<ext>.
type KeyGen struct {
	now    func() time.Time
	random func() string
}

func NewKeyGen() *KeyGen {
	return &KeyGen{
		now:    time.Now,
		random: randomString,
	}
}

func (g *KeyGen) Key(folder, originalName string) string {
	key := fmt.Sprintf("%s/%d_%s", folder, g.now().UnixMilli(), g.random())

	if ext := extension(originalName); ext != "" {
		key += "." + ext
	}

	return key
}

func randomString() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:randomLen]
}

// extension is the text after the last dot of the base name, or "".
func extension(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}

	return name[i+1:]
}
