package formatters

import "github.com/LegacyCodeHQ/quire/taskgraph"

// KindStyle is how one group of step kinds is drawn.
type KindStyle struct {
	// Class names the Mermaid classDef.
	Class string
	// DotColor is a Graphviz color name.
	DotColor string
	// Mermaid is the classDef body.
	Mermaid string
}

var (
	aggregateStyle    = KindStyle{Class: "aggregate", DotColor: "palegreen", Mermaid: "fill:#98FB98,stroke:#228B22,color:#000000"}
	cleanStyle        = KindStyle{Class: "clean", DotColor: "lightgrey", Mermaid: "fill:#EEEEEE,stroke:#999999,color:#000000"}
	bibliographyStyle = KindStyle{Class: "bibliography", DotColor: "lightyellow", Mermaid: "fill:#FFFFE0,stroke:#B8860B,color:#000000"}
	imagesStyle       = KindStyle{Class: "images", DotColor: "lightblue", Mermaid: "fill:#ADD8E6,stroke:#4682B4,color:#000000"}
)

// StyledKinds returns the styles in the order their class lines are written.
// Compile steps keep the default style.
func StyledKinds() []KindStyle {
	return []KindStyle{aggregateStyle, cleanStyle, bibliographyStyle, imagesStyle}
}

// StyleFor returns the style of kind and false for plain compile steps.
func StyleFor(kind taskgraph.Kind) (KindStyle, bool) {
	switch kind {
	case taskgraph.KindAggregateCompile, taskgraph.KindAggregateClean:
		return aggregateStyle, true
	case taskgraph.KindClean:
		return cleanStyle, true
	case taskgraph.KindBibliography:
		return bibliographyStyle, true
	case taskgraph.KindImageConvert:
		return imagesStyle, true
	default:
		return KindStyle{}, false
	}
}
