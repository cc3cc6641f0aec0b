package ngram

// ID is the interned identifier of a token.
type ID uint32

// Interner assigns dense ids to tokens in first-seen order.
// Ids are never reused or renumbered.
type Interner struct {
	ids    map[string]ID
	tokens []string
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]ID)}
}

// ID returns the id of token, assigning the next free id on first sight.
func (in *Interner) ID(token string) ID {
	if id, ok := in.ids[token]; ok {
		return id
	}
	id := ID(len(in.tokens))
	in.ids[token] = id
	in.tokens = append(in.tokens, token)
	return id
}

// Lookup returns the id of token without assigning one.
func (in *Interner) Lookup(token string) (ID, bool) {
	id, ok := in.ids[token]
	return id, ok
}

// Token returns the token for id.
func (in *Interner) Token(id ID) (string, bool) {
	if int(id) >= len(in.tokens) {
		return "", false
	}
	return in.tokens[id], true
}

// Len returns the number of distinct tokens seen.
func (in *Interner) Len() int {
	return len(in.tokens)
}
