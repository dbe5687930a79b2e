package cell

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/wippyai/tvm-disasm/errors"
)

// MaxDictKeyBits is the widest key LoadDict can return as an integer.
const MaxDictKeyBits = 64

// DictEntry is one key/value pair of a dictionary. Value is positioned right after
// the edge label of the leaf.
type DictEntry struct {
	Key   uint64
	Value *Slice
}

func labelWidth(m int) int {
	return bits.Len(uint(m))
}

// loadLabel reads an edge label for a node with m key bits left.
func loadLabel(s *Slice, m int) (uint64, int, error) {
	tag, err := s.LoadBit()
	if err != nil {
		return 0, 0, err
	}
	if !tag { // hml_short
		n := 0
		for {
			b, err := s.LoadBit()
			if err != nil {
				return 0, 0, err
			}
			if !b {
				break
			}
			n++
		}
		if n > m {
			return 0, 0, errors.InvalidData(errors.PhaseLoad, nil, fmt.Sprintf("label of %d bits exceeds %d", n, m))
		}
		v, err := s.LoadUint(n)
		return v, n, err
	}
	same, err := s.LoadBit()
	if err != nil {
		return 0, 0, err
	}
	if !same { // hml_long
		n, err := s.LoadUint(labelWidth(m))
		if err != nil {
			return 0, 0, err
		}
		if int(n) > m {
			return 0, 0, errors.InvalidData(errors.PhaseLoad, nil, fmt.Sprintf("label of %d bits exceeds %d", n, m))
		}
		v, err := s.LoadUint(int(n))
		return v, int(n), err
	}
	// hml_same
	bit, err := s.LoadBit()
	if err != nil {
		return 0, 0, err
	}
	n, err := s.LoadUint(labelWidth(m))
	if err != nil {
		return 0, 0, err
	}
	if int(n) > m {
		return 0, 0, errors.InvalidData(errors.PhaseLoad, nil, fmt.Sprintf("label of %d bits exceeds %d", n, m))
	}
	var v uint64
	if bit && n > 0 {
		v = ^uint64(0) >> (64 - n)
	}
	return v, int(n), nil
}

// LoadDict reads every entry of a dictionary with keyBits-bit keys rooted at root,
// in ascending key order.
func LoadDict(root *Cell, keyBits int) ([]DictEntry, error) {
	if keyBits <= 0 || keyBits > MaxDictKeyBits {
		return nil, errors.Unsupported(errors.PhaseLoad, fmt.Sprintf("dictionary key of %d bits", keyBits))
	}
	var out []DictEntry
	var walk func(c *Cell, prefix uint64, m int) error
	walk = func(c *Cell, prefix uint64, m int) error {
		s := c.BeginParse()
		label, l, err := loadLabel(s, m)
		if err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "dictionary label")
		}
		key := prefix<<uint(l) | label
		if l == m {
			out = append(out, DictEntry{Key: key, Value: s})
			return nil
		}
		for i := uint64(0); i < 2; i++ {
			child, err := s.LoadRef()
			if err != nil {
				return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "dictionary fork")
			}
			if err := walk(child, key<<1|i, m-l-1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, 0, keyBits); err != nil {
		return nil, err
	}
	return out, nil
}

// LookupDict returns the value stored under key, or nil when absent.
func LookupDict(root *Cell, keyBits int, key uint64) (*Slice, error) {
	entries, err := LoadDict(root, keyBits)
	if err != nil {
		return nil, err
	}
	i := sort.Search(len(entries), func(i int) bool { return entries[i].Key >= key })
	if i < len(entries) && entries[i].Key == key {
		return entries[i].Value, nil
	}
	return nil, nil
}

func keyBit(key uint64, keyBits, i int) uint64 {
	return key >> uint(keyBits-1-i) & 1
}

// storeLabel writes the shortest encoding of the n-bit label v for m remaining bits.
func storeLabel(b *Builder, v uint64, n, m int) {
	w := labelWidth(m)
	short := 2 + 2*n
	long := 2 + w + n
	same := -1
	if n == 0 || v == 0 || v == ^uint64(0)>>uint(64-n) {
		same = 3 + w
	}
	switch {
	case short <= long && (same < 0 || short <= same):
		b.StoreBit(false)
		for i := 0; i < n; i++ {
			b.StoreBit(true)
		}
		b.StoreBit(false)
		b.StoreUint(v, n)
	case same >= 0 && same < long:
		b.StoreUint(0b11, 2)
		b.StoreBit(v&1 == 1)
		b.StoreUint(uint64(n), w)
	default:
		b.StoreUint(0b10, 2)
		b.StoreUint(uint64(n), w)
		b.StoreUint(v, n)
	}
}

// BuildDict builds a dictionary with keyBits-bit keys. The bits and references of
// each value cell are stored in the leaf after its label.
func BuildDict(keyBits int, values map[uint64]*Cell) (*Cell, error) {
	if keyBits <= 0 || keyBits > MaxDictKeyBits {
		return nil, errors.Unsupported(errors.PhaseRender, fmt.Sprintf("dictionary key of %d bits", keyBits))
	}
	if len(values) == 0 {
		return nil, errors.InvalidData(errors.PhaseRender, nil, "empty dictionary")
	}
	keys := make([]uint64, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	// build emits the node for keys sharing their first `depth` bits.
	var build func(keys []uint64, depth int) (*Cell, error)
	build = func(keys []uint64, depth int) (*Cell, error) {
		m := keyBits - depth
		l := 0
		if len(keys) == 1 {
			l = m
		} else {
			for l < m && keyBit(keys[0], keyBits, depth+l) == keyBit(keys[len(keys)-1], keyBits, depth+l) {
				l++
			}
		}
		var label uint64
		for i := 0; i < l; i++ {
			label = label<<1 | keyBit(keys[0], keyBits, depth+i)
		}
		b := NewBuilder()
		storeLabel(b, label, l, m)
		if l == m {
			b.StoreSlice(values[keys[0]].BeginParse())
			return b.EndCell()
		}
		split := sort.Search(len(keys), func(i int) bool { return keyBit(keys[i], keyBits, depth+l) == 1 })
		left, err := build(keys[:split], depth+l+1)
		if err != nil {
			return nil, err
		}
		right, err := build(keys[split:], depth+l+1)
		if err != nil {
			return nil, err
		}
		return b.StoreRef(left).StoreRef(right).EndCell()
	}
	return build(keys, 0)
}
