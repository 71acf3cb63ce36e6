package chainset

import (
	"fmt"
	"strings"
)

// CollectionFlag is one bit of the collection flags byte.
type CollectionFlag uint8

const (
	FlagERC721Metadata CollectionFlag = 1 << 6
	FlagForeign        CollectionFlag = 1 << 7
)

var flagNames = map[string]CollectionFlag{
	"erc721metadata": FlagERC721Metadata,
	"foreign":        FlagForeign,
}

// PackFlags ORs the flags into a single byte. Order and duplicates do not matter.
func PackFlags(flags ...CollectionFlag) uint8 {
	var packed uint8
	for _, f := range flags {
		packed |= uint8(f)
	}
	return packed
}

func ParseCollectionFlags(names []string) ([]CollectionFlag, error) {
	flags := make([]CollectionFlag, 0, len(names))
	for _, n := range names {
		f, ok := flagNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown collection flag %q", n)
		}
		flags = append(flags, f)
	}
	return flags, nil
}
