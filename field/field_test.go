package field

import (
	"math/big"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	cases := []string{"0x0", "0x1", "0xdeadbeef", "0x" + "ff"}
	for _, c := range cases {
		f, err := FromHex(c)
		if err != nil {
			t.Fatalf("FromHex(%q): %v", c, err)
		}
		back, err := FromHex(ToHex(f))
		if err != nil {
			t.Fatalf("FromHex(ToHex(...)): %v", err)
		}
		if !f.Equal(&back) {
			t.Fatalf("round trip mismatch for %q", c)
		}
	}
}

func TestFromHexRejectsOversizedInput(t *testing.T) {
	long := "0x"
	for i := 0; i < 66; i++ {
		long += "a"
	}
	if _, err := FromHex(long); err == nil {
		t.Fatalf("expected error for 33-byte hex input")
	}
}

func TestParseActionIDDualFormat(t *testing.T) {
	hexVal, err := ParseActionID("0x2a")
	if err != nil {
		t.Fatalf("hex parse: %v", err)
	}
	decVal, err := ParseActionID("42")
	if err != nil {
		t.Fatalf("decimal parse: %v", err)
	}
	if !hexVal.Equal(&decVal) {
		t.Fatalf("0x2a and 42 should parse to the same field element")
	}
}

func TestParseActionIDRejectsNegative(t *testing.T) {
	if _, err := ParseActionID("-1"); err == nil {
		t.Fatalf("expected error for negative decimal action id")
	}
}

func TestBigIntRoundTrip(t *testing.T) {
	v := big.NewInt(123456789)
	f := FromBigInt(v)
	back := ToBigInt(f)
	if v.Cmp(back) != 0 {
		t.Fatalf("big.Int round trip mismatch: %v != %v", v, back)
	}
}
