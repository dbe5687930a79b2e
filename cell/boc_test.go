package cell

import (
	"encoding/hex"
	stderrors "errors"
	"testing"

	"github.com/wippyai/tvm-disasm/errors"
)

func TestBoCRoundTrip(t *testing.T) {
	leaf := MustFromHex("f85_")
	mid := MustFromHex("0123", leaf)
	root := MustFromHex("8b04", mid, leaf, mid)

	data, err := SerializeBoC(root)
	if err != nil {
		t.Fatal(err)
	}
	if hex.EncodeToString(data[:4]) != "b5ee9c72" {
		t.Fatalf("magic = %x", data[:4])
	}

	roots, err := DeserializeBoC(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 {
		t.Fatalf("roots = %d", len(roots))
	}
	if roots[0].Hash() != root.Hash() {
		t.Error("hash changed after round trip")
	}
	if roots[0].Ref(2).Ref(0).Hex() != "f85_" {
		t.Errorf("nested leaf = %s", roots[0].Ref(2).Ref(0).Hex())
	}
}

func TestBoCErrors(t *testing.T) {
	root := MustFromHex("abcd")
	data, err := SerializeBoC(root)
	if err != nil {
		t.Fatal(err)
	}

	bad := append([]byte(nil), data...)
	bad[len(bad)-1] ^= 0xff
	if _, err := DeserializeBoC(bad); err == nil {
		t.Error("expected crc mismatch")
	}

	if _, err := DeserializeBoC(data[:len(data)-6]); err == nil {
		t.Error("expected truncation error")
	}

	_, err = DeserializeBoC([]byte{1, 2, 3, 4, 5, 6})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData}) {
		t.Errorf("bad magic error = %v", err)
	}
}
