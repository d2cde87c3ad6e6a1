package action

import (
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map"
)

// composeRow is one Latin-1 code point's compose-key sequence: up to 3 ASCII
// keys the host's Compose input method turns into the code point (spec
// §4.8 "Unicode", glossary "Compose key"). Grounded verbatim on
// original_source/pico/teclado.c's compose_table, U+00A0..U+00FF.
var composeRows = [...]string{
	" ", "!!", "|c", "-L", "ox", "=Y", "!^", "so", // A0  ¡¢£¤¥¦§
	"\"", "OC", "^_a", "<<", "-,", "--", "OR", "-^", // A8 ¨©ª«¬­®¯
	"oo", "+-", "^2", "^3", "''", "mu", "P!", "^.", // B0 °±²³´µ¶·
	",,", "^1", "^_o", ">>", "14", "12", "34", "??", // B8 ¸¹º»¼½¾¿
	"`A", "'A", "^A", "~A", "\"A", "*A", "AE", ",C", // C0 ÀÁÂÃÄÅÆÇ
	"`E", "'E", "^E", "\"E", "`I", "'I", "^I", "\"I", // C8 ÈÉÊËÌÍÎÏ
	"DH", "~N", "`O", "'O", "^O", "~O", "\"O", "xx", // D0 ÐÑÒÓÔÕÖ×
	"/O", "`U", "'U", "^U", "\"U", "'Y", "TH", "ss", // D8 ØÙÚÛÜÝÞß
	"`a", "'a", "^a", "~a", "\"a", "*a", "ae", ",c", // E0 àáâãäåæç
	"`e", "'e", "^e", "\"e", "`i", "'i", "^i", "\"i", // E8 èéêëìíîï
	"dh", "~n", "`o", "'o", "^o", "~o", "\"o", ":-", // F0 ðñòóôõö÷
	"/o", "`u", "'u", "^u", "\"u", "'y", "th", "\"y", // F8 øùúûüýþÿ
}

// composeTable preserves the insertion order of composeRows (U+00A0 first)
// via go-ordered-map, the same container the teacher uses to keep its USB
// gadget file writes in a deterministic order. Order matters here too: it
// lets tests and diagnostics enumerate the table exactly as authored.
var composeTable = func() *orderedmap.OrderedMap {
	m := orderedmap.New()
	for i, seq := range composeRows {
		r := rune(0xA0 + i)
		if seq == "" {
			continue
		}
		m.Set(r, seq)
	}
	return m
}()

// ComposeSequence returns the ASCII compose-key sequence for r, if any.
func ComposeSequence(r rune) (string, bool) {
	v, ok := composeTable.Get(r)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// IsWordRune reports whether r is part of a "word" for word-lock purposes
// (spec glossary): letters, digits, underscore, or any code point whose
// upper-case form differs from itself.
func IsWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		return true
	}
	return unicode.ToUpper(r) != r
}
