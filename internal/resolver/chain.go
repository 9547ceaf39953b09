package resolver

import "github.com/bibleclock/bibleclock-server/internal/sources"

// link is one step of a fallback chain: which source to ask and which
// translation code to ask it for.
type link struct {
	kind sources.Kind
	code string
}

// chains holds the per-translation fallback order. Every chain starts at the
// local cache and ends at a source that serves public-domain text, so even a
// fully keyless deployment resolves something.
var chains = map[string][]link{
	"kjv": {
		{sources.KindCache, "kjv"},
		{sources.KindBibleAPI, "kjv"},
		{sources.KindWldeh, "kjv"},
	},
	"ylt": {
		{sources.KindCache, "ylt"},
		{sources.KindBibleAPI, "ylt"},
		{sources.KindBibleAPI, "kjv"},
	},
	"amp": {
		{sources.KindCache, "amp"},
		{sources.KindGateway, "AMP"},
		{sources.KindAPIBible, "AMP"},
		{sources.KindGatewayAPI, "AMP"},
		{sources.KindBibleAPI, "kjv"},
	},
	"nlt": {
		{sources.KindCache, "nlt"},
		{sources.KindGateway, "NLT"},
		{sources.KindGatewayAPI, "NLT"},
		{sources.KindBibleAPI, "kjv"},
	},
	"msg": {
		{sources.KindCache, "msg"},
		{sources.KindGateway, "MSG"},
		{sources.KindGatewayAPI, "MSG"},
		{sources.KindBibleAPI, "kjv"},
	},
	"esv": {
		{sources.KindCache, "esv"},
		{sources.KindGateway, "ESV"},
		{sources.KindESV, "ESV"},
		{sources.KindBibleAPI, "kjv"},
	},
	"nasb": {
		{sources.KindCache, "nasb"},
		{sources.KindGateway, "NASB1995"},
		{sources.KindGatewayAPI, "NASB1995"},
		{sources.KindBibleAPI, "kjv"},
	},
	"cev": {
		{sources.KindCache, "cev"},
		{sources.KindGateway, "CEV"},
		{sources.KindAPIBible, "CEV"},
		{sources.KindGatewayAPI, "CEV"},
		{sources.KindBibleAPI, "kjv"},
	},
}

// defaultChain serves translation codes with no chain of their own.
var defaultChain = []link{{sources.KindBibleAPI, "kjv"}}

// chainFor returns the fallback chain for a normalized translation code.
func chainFor(translation string) []link {
	if chain, ok := chains[translation]; ok {
		return chain
	}
	return defaultChain
}
