package localisation

// FontFallbackChain is an ordered list of font names to try, in order, when
// the requested font is unavailable on the host.
type FontFallbackChain struct {
	Requested string   `yaml:"requested" json:"requested"`
	Fallbacks []string `yaml:"fallbacks" json:"fallbacks"`
}

// FontTable holds all configured fallback chains, keyed by requested font
// name.
type FontTable struct {
	chains map[string][]string
}

// NewFontTable builds a FontTable from a list of chains.
func NewFontTable(chains []FontFallbackChain) *FontTable {
	t := &FontTable{chains: make(map[string][]string, len(chains))}
	for _, c := range chains {
		t.chains[c.Requested] = c.Fallbacks
	}
	return t
}

// DefaultFontTable seeds the table with the fallback chain named explicitly
// in the specification: 楷体 -> 楷体_GB2312 -> STKaiti.
func DefaultFontTable() *FontTable {
	return NewFontTable([]FontFallbackChain{
		{Requested: "楷体", Fallbacks: []string{"楷体_GB2312", "STKaiti"}},
		{Requested: "宋体", Fallbacks: []string{"SimSun", "STSong"}},
		{Requested: "黑体", Fallbacks: []string{"SimHei", "STHeiti"}},
	})
}

// ResolveOutcome describes the result of resolving a requested font against
// a host font set.
type ResolveOutcome struct {
	// Resolved is the font name to actually use: the requested font if
	// available, the first available fallback, or the host default if the
	// chain is exhausted.
	Resolved string
	// UsedFallback is true whenever Resolved differs from the requested
	// font: a chain entry was found, or the chain was exhausted.
	UsedFallback bool
	// ChainExhausted is true when neither the requested font nor any
	// fallback was available and Resolved is the host default.
	ChainExhausted bool
}

// Resolve deterministically picks the font to use for requested, given a
// set of fonts available on the host and a host default to fall back to if
// the entire chain is exhausted. Given a frozen table and a fixed
// hostFonts set, Resolve always returns the same Resolved value — the
// font-fallback determinism property from the specification's testable
// properties.
func (t *FontTable) Resolve(requested string, hostFonts map[string]bool, hostDefault string) ResolveOutcome {
	if hostFonts[requested] {
		return ResolveOutcome{Resolved: requested}
	}
	for _, fallback := range t.chains[requested] {
		if hostFonts[fallback] {
			return ResolveOutcome{Resolved: fallback, UsedFallback: true}
		}
	}
	return ResolveOutcome{Resolved: hostDefault, UsedFallback: true, ChainExhausted: true}
}
