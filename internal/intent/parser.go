package intent

import "advisorvoice/internal/domain"

// Parser classifies an utterance and extracts the slots of the winning intent.
type Parser struct {
	classifier *Classifier
	extractor  *Extractor
}

func NewParser(classifier *Classifier, extractor *Extractor) *Parser {
	if classifier == nil {
		classifier = NewClassifier()
	}
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &Parser{classifier: classifier, extractor: extractor}
}

// Parse never fails: unmatched input becomes domain.Unrecognized.
func (p *Parser) Parse(u domain.Utterance) (domain.IntentTag, domain.Command) {
	tag := p.classifier.Classify(u.Normalized)
	return tag, p.extractor.Extract(tag, u)
}
