// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"bytes"
	"encoding/binary"
)

// HandleContext corresponds to an entity that resides on the TPM. Some
// implementations maintain host-side state in order to be able to participate
// in sessions. A HandleContext is invalidated when used in a command that
// results in the entity being flushed from the TPM. Once invalidated, it can
// no longer be used.
type HandleContext interface {
	// Handle returns the handle of the corresponding entity on the TPM. If
	// the HandleContext has been invalidated then this will return
	// HandleUnassigned.
	Handle() Handle
	Name() Name // The name of the entity
}

type handleContextPrivate interface {
	invalidate()
}

// SessionContext is a HandleContext that corresponds to a session on the TPM.
type SessionContext interface {
	HandleContext
	NonceTPM() Nonce // The most recent TPM nonce value

	Attrs() SessionAttributes         // The attributes that will be used for this SessionContext
	SetAttrs(attrs SessionAttributes) // Set the attributes that will be used for this SessionContext

	// WithAttrs returns a duplicate of this SessionContext with the specified
	// attributes. The duplicate shares the session state of the original.
	WithAttrs(attrs SessionAttributes) SessionContext

	// IncludeAttrs returns a duplicate of this SessionContext and its attributes
	// with the specified attributes included.
	IncludeAttrs(attrs SessionAttributes) SessionContext
	// ExcludeAttrs returns a duplicate of this SessionContext and its attributes
	// with the specified attributes excluded.
	ExcludeAttrs(attrs SessionAttributes) SessionContext
}

// ResourceContext is a HandleContext that corresponds to a non-session entity
// on the TPM.
type ResourceContext interface {
	HandleContext

	// SetAuthValue sets the authorization value that will be used in
	// authorization roles where knowledge of the authorization value is
	// required.
	SetAuthValue([]byte)
}

type resourceContextPrivate interface {
	GetAuthValue() []byte
}

func makeHandleName(handle Handle) Name {
	name := make(Name, binary.Size(Handle(0)))
	binary.BigEndian.PutUint32(name, uint32(handle))
	return name
}

type partialHandleContext struct {
	handle Handle
	name   Name
}

func (h *partialHandleContext) Handle() Handle {
	return h.handle
}

func (h *partialHandleContext) Name() Name {
	return h.name
}

func (h *partialHandleContext) invalidate() {
	h.handle = HandleUnassigned
	h.name = makeHandleName(h.handle)
}

func makePartialHandleContext(handle Handle) *partialHandleContext {
	return &partialHandleContext{handle: handle, name: makeHandleName(handle)}
}

// CreatePartialHandleContext creates a new HandleContext for the specified
// handle. The returned HandleContext is partial and cannot be used in any
// command other than TPMContext.FlushContext.
//
// This function will panic if handle doesn't correspond to a session.
func CreatePartialHandleContext(handle Handle) HandleContext {
	switch handle.Type() {
	case HandleTypeHMACSession, HandleTypePolicySession:
		return makePartialHandleContext(handle)
	default:
		panic("invalid handle type")
	}
}

type permanentContext struct {
	partialHandleContext
	authValue []byte
}

func (r *permanentContext) SetAuthValue(authValue []byte) {
	r.authValue = authValue
}

func (r *permanentContext) GetAuthValue() []byte {
	return bytes.TrimRight(r.authValue, "\x00")
}

// Permanent resources cannot be flushed.
func (r *permanentContext) invalidate() {}

func makePermanentContext(handle Handle) *permanentContext {
	return &permanentContext{partialHandleContext: *makePartialHandleContext(handle)}
}

// GetPermanentContext returns a ResourceContext for the specified permanent
// handle or PCR handle. The returned context is cached on the TPMContext so
// that an authorization value set with ResourceContext.SetAuthValue persists
// across calls.
//
// This function will panic if handle does not correspond to a permanent or
// PCR handle.
func (t *TPMContext) GetPermanentContext(handle Handle) ResourceContext {
	switch handle.Type() {
	case HandleTypePermanent, HandleTypePCR:
		if rc, exists := t.permanentResources[handle]; exists {
			return rc
		}

		rc := makePermanentContext(handle)
		t.permanentResources[handle] = rc
		return rc
	default:
		panic("invalid handle type")
	}
}

// OwnerHandleContext returns the ResourceContext corresponding to the owner
// hierarchy.
func (t *TPMContext) OwnerHandleContext() ResourceContext {
	return t.GetPermanentContext(HandleOwner)
}

// NullHandleContext returns the ResourceContext corresponding to the null
// hierarchy.
func (t *TPMContext) NullHandleContext() ResourceContext {
	return t.GetPermanentContext(HandleNull)
}

// LockoutHandleContext returns the ResourceContext corresponding to the
// lockout hierarchy.
func (t *TPMContext) LockoutHandleContext() ResourceContext {
	return t.GetPermanentContext(HandleLockout)
}

// EndorsementHandleContext returns the ResourceContext corresponding to the
// endorsement hierarchy.
func (t *TPMContext) EndorsementHandleContext() ResourceContext {
	return t.GetPermanentContext(HandleEndorsement)
}

// PlatformHandleContext returns the ResourceContext corresponding to the
// platform hierarchy.
func (t *TPMContext) PlatformHandleContext() ResourceContext {
	return t.GetPermanentContext(HandlePlatform)
}

// PCRHandleContext returns the ResourceContext corresponding to the PCR at
// the specified index. It will panic if pcr is not a valid PCR index.
func (t *TPMContext) PCRHandleContext(pcr int) ResourceContext {
	h := Handle(pcr)
	if h.Type() != HandleTypePCR {
		panic("invalid PCR index")
	}
	return t.GetPermanentContext(h)
}
