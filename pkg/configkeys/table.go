package configkeys

import (
	"maps"
	"slices"

	"github.com/systemstart/gaia-node-manager/pkg/api"
)

const (
	KeyChatURL              = "chat-url"
	KeyEmbeddingURL         = "embedding-url"
	KeySnapshot             = "snapshot"
	KeyChatCtxSize          = "chat-ctx-size"
	KeyEmbeddingCtxSize     = "embedding-ctx-size"
	KeyPort                 = "port"
	KeyQdrantLimit          = "qdrant-limit"
	KeyQdrantScoreThreshold = "qdrant-score-threshold"
	KeyRAGPolicy            = "rag-policy"
	KeyBase                 = "base"
	KeyPromptTemplate       = "prompt-template"
	KeySystemPrompt         = "system-prompt"
	KeyRAGPrompt            = "rag-prompt"
	KeyReversePrompt        = "reverse-prompt"

	RAGPolicySystemMessage   = "system-message"
	RAGPolicyLastUserMessage = "last-user-message"
)

// Table maps each recognized config key to its rule. It is built once and
// never mutated.
type Table struct {
	rules map[string]Rule
}

// NewTable returns the gaianet key table. Local files given for URL keys
// must live under baseDir.
func NewTable(baseDir string) *Table {
	urlOrFile := URLOrLocalFile{BaseDir: baseDir}
	return &Table{rules: map[string]Rule{
		KeyChatURL:              urlOrFile,
		KeyEmbeddingURL:         urlOrFile,
		KeySnapshot:             urlOrFile,
		KeyChatCtxSize:          NonNegativeInteger{},
		KeyEmbeddingCtxSize:     NonNegativeInteger{},
		KeyPort:                 NonNegativeInteger{},
		KeyQdrantLimit:          PositiveInteger{},
		KeyQdrantScoreThreshold: BoundedFloat{Min: 0.0, Max: 1.0},
		KeyRAGPolicy:            EnumOf{Values: []string{RAGPolicySystemMessage, RAGPolicyLastUserMessage}},
		KeyBase:                 ExistingPath{},
		KeyPromptTemplate:       FreeText{},
		KeySystemPrompt:         FreeText{},
		KeyRAGPrompt:            FreeText{},
		KeyReversePrompt:        FreeText{},
	}}
}

// Lookup returns the rule for key.
func (t *Table) Lookup(key string) (Rule, bool) {
	r, ok := t.rules[key]
	return r, ok
}

// Keys returns the recognized keys, sorted.
func (t *Table) Keys() []string {
	return slices.Sorted(maps.Keys(t.rules))
}

// Validate checks a single key/value pair.
func (t *Table) Validate(key, value string) error {
	rule, ok := t.rules[key]
	if !ok {
		return newError(UnknownKey, key, value, "")
	}
	if verr := rule.check(key, value); verr != nil {
		return verr
	}
	return nil
}

// ValidateBatch checks updates in order and returns the first failure. A
// key given twice is rejected, since each key becomes its own named step.
func (t *Table) ValidateBatch(updates []api.ConfigUpdate) error {
	seen := make(map[string]bool, len(updates))
	for _, u := range updates {
		if err := t.Validate(u.Key, u.Value); err != nil {
			return err
		}
		if seen[u.Key] {
			return newError(DuplicateKey, u.Key, u.Value, "key appears more than once in the batch")
		}
		seen[u.Key] = true
	}
	return nil
}
