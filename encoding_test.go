package adminhash

import (
	"bytes"
	"testing"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

func TestLegacy_Bytes(t *testing.T) {
	for _, v := range []struct {
		in   string
		want []byte
	}{
		{"", []byte{}},
		{"admin123", []byte("admin123")},
		{"пароль", []byte("пароль")}, /* Below U+0800 the two encoders agree. */
		{"Ünïcødé", []byte("Ünïcødé")},
		{"密码", []byte{0xef, 0x86, 0xe0, 0x81}},
		{"🔑", []byte{0xe0, 0xbd, 0xf4, 0x91}}, /* Two surrogates, two bytes each. */
	} {
		if got := Legacy.Bytes(v.in); !bytes.Equal(got, v.want) {
			t.Errorf("Legacy.Bytes(%q) = %x, want %x", v.in, got, v.want)
		}
	}
}

func TestHexWith_Encodings(t *testing.T) {
	for _, v := range []struct{ in, utf8, legacy string }{
		{"密码",
			"a621ab606db2a11f63edc576a729843b8269250dc324206871d90635ac5e531c",
			"3afd3ae37a19c4033026148a8e40a610db2ef73a2536c5ea95b8fafc5d46c4be"},
		{"пароль",
			"2dbc574daca52689a24fb60e835f8c19a36400830df7350859dd32d1abaaec5d",
			"2dbc574daca52689a24fb60e835f8c19a36400830df7350859dd32d1abaaec5d"},
		{"🔑",
			"c5c75521402748f523eee2f15d74f10f38acbb134ebd026d5777958c3df862cb",
			"47eaa17095bbe192c71728d4d643fb9df878dba8a833222fc392611ba0dded63"},
	} {
		if got := HexWith(v.in, UTF8); got != v.utf8 {
			t.Errorf("HexWith(%q, UTF8) = %s, want %s", v.in, got, v.utf8)
		}
		if got := HexWith(v.in, Legacy); got != v.legacy {
			t.Errorf("HexWith(%q, Legacy) = %s, want %s", v.in, got, v.legacy)
		}
	}
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{"": UTF8, "utf8": UTF8, "UTF-8": UTF8, " Legacy ": Legacy} {
		if got, err := ParseEncoding(in); err != nil || got != want {
			t.Errorf("ParseEncoding(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseEncoding("latin1"); err == nil {
		t.Error("ParseEncoding(\"latin1\") should fail")
	}
	if s := Encoding(7).String(); s != "Encoding(7)" {
		t.Errorf("Encoding(7).String() = %q", s)
	}
}
