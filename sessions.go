// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

// sessionContextData is the state of a session that is shared between every
// SessionContext referring to the same session on the TPM. It is mutated as
// the session is used - the nonces rotate on each successful exchange, and
// the whole structure is discarded when the session is flushed or when the
// TPM rejects the local view of its state.
type sessionContextData struct {
	HashAlg     HashAlgorithmId
	SessionType SessionType
	IsBound     bool
	BoundEntity Name
	SessionKey  []byte
	NonceCaller Nonce
	NonceTPM    Nonce
	Symmetric   *SymDef
}

type sessionContextState struct {
	handle Handle
	name   Name
	data   *sessionContextData
}

// sessionContext implements SessionContext. Duplicates created by WithAttrs,
// IncludeAttrs and ExcludeAttrs share a sessionContextState so that nonce
// rotation and invalidation are observed by every duplicate.
type sessionContext struct {
	state *sessionContextState
	attrs SessionAttributes
}

func (r *sessionContext) Handle() Handle {
	return r.state.handle
}

func (r *sessionContext) Name() Name {
	return r.state.name
}

func (r *sessionContext) NonceTPM() Nonce {
	d := r.Data()
	if d == nil {
		return nil
	}
	return d.NonceTPM
}

func (r *sessionContext) Attrs() SessionAttributes {
	return r.attrs
}

func (r *sessionContext) SetAttrs(attrs SessionAttributes) {
	r.attrs = attrs
}

func (r *sessionContext) WithAttrs(attrs SessionAttributes) SessionContext {
	return &sessionContext{state: r.state, attrs: attrs}
}

func (r *sessionContext) IncludeAttrs(attrs SessionAttributes) SessionContext {
	return &sessionContext{state: r.state, attrs: r.attrs | attrs}
}

func (r *sessionContext) ExcludeAttrs(attrs SessionAttributes) SessionContext {
	return &sessionContext{state: r.state, attrs: r.attrs &^ attrs}
}

func (r *sessionContext) Data() *sessionContextData {
	return r.state.data
}

func (r *sessionContext) invalidate() {
	r.state.handle = HandleUnassigned
	r.state.name = makeHandleName(r.state.handle)
	r.state.data = nil
}

// usable returns an error if the session state no longer matches a live
// session on the TPM. A session becomes unusable when it is flushed, when the
// TPM retires it by clearing the continueSession attribute in a response, or
// when the TPM rejects its nonce.
func (r *sessionContext) usable() error {
	if r.state.data == nil || r.state.handle == HandleUnassigned {
		return &SessionExpiredError{r.state.handle, "the session has been flushed from the TPM or its state no longer matches the TPM's"}
	}
	return nil
}

func makeSessionContext(handle Handle, data *sessionContextData) *sessionContext {
	return &sessionContext{
		state: &sessionContextState{
			handle: handle,
			name:   makeHandleName(handle),
			data:   data}}
}
