// Package sources defines the contract remote verse providers implement and
// the identifiers fallback chains use to name them.
package sources

import "context"

// Kind identifies one link of a fallback chain.
type Kind string

const (
	KindCache      Kind = "local_cache"
	KindBibleAPI   Kind = "bible_api"
	KindWldeh      Kind = "wldeh_cdn"
	KindGateway    Kind = "gateway_scrape"
	KindGatewayAPI Kind = "gateway_api"
	KindESV        Kind = "esv_api"
	KindAPIBible   Kind = "api_bible"
	KindFallback   Kind = "fallback_collection"
)

// Fetcher retrieves the text of a single verse from one remote source.
// code is the translation code the source understands (for example "AMP" or
// "kjv"); implementations return a non-empty trimmed text or an error. A
// failing fetcher never aborts resolution, the chain just moves on.
type Fetcher interface {
	Kind() Kind
	Fetch(ctx context.Context, book string, chapter, verse int, code string) (string, error)
}
