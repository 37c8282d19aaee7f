// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"bytes"
	"crypto/hmac"
	"errors"
	"fmt"
	"hash"
	"io"

	"golang.org/x/xerrors"
)

// computeBindName computes the bind name of an entity from its name and
// authorization value. The TPM mixes the authorization value into the tail of
// the name when recording the entity a session is bound to.
func computeBindName(name Name, auth Auth) Name {
	if len(auth) > len(name) {
		auth = auth[0:len(name)]
	}
	r := make(Name, len(name))
	copy(r, name)
	j := 0
	for i := len(name) - len(auth); i < len(name); i++ {
		r[i] ^= auth[j]
		j++
	}
	return r
}

// sessionParam associates a session with a command. If session is nil then
// the authorization is a plaintext password authorization for
// associatedContext. If associatedContext is nil then the session is not used
// for authorization.
type sessionParam struct {
	session           *sessionContext
	associatedContext ResourceContext
	includeAuthValue  bool
}

func (s *sessionParam) isAuth() bool {
	return s.associatedContext != nil
}

func (s *sessionParam) isPassword() bool {
	return s.session == nil
}

func (s *sessionParam) entityAuthValue() []byte {
	if s.associatedContext == nil {
		return nil
	}
	return s.associatedContext.(resourceContextPrivate).GetAuthValue()
}

// computeSessionHMACKey returns the key for the authorization HMAC - the
// session key concatenated with the authorization value of the associated
// entity when that value is part of the key for this session.
func (s *sessionParam) computeSessionHMACKey() []byte {
	var key []byte
	key = append(key, s.session.Data().SessionKey...)
	if s.includeAuthValue {
		key = append(key, s.entityAuthValue()...)
	}
	return key
}

func (s *sessionParam) computeHMAC(pHash []byte, nonceNewer, nonceOlder Nonce, attrs SessionAttributes) ([]byte, bool) {
	key := s.computeSessionHMACKey()
	h := hmac.New(func() hash.Hash { return s.session.Data().HashAlg.NewHash() }, key)

	h.Write(pHash)
	h.Write(nonceNewer)
	h.Write(nonceOlder)
	h.Write([]byte{uint8(attrs)})

	return h.Sum(nil), len(key) > 0
}

func (s *sessionParam) computeCommandHMAC(commandCode CommandCode, commandHandles []Name, cpBytes []byte) []byte {
	data := s.session.Data()
	cpHash := cryptComputeCpHash(data.HashAlg, commandCode, commandHandles, cpBytes)
	h, _ := s.computeHMAC(cpHash, data.NonceCaller, data.NonceTPM, s.session.attrs)
	return h
}

func (s *sessionParam) buildCommandAuth(commandCode CommandCode, commandHandles []Name, cpBytes []byte) *AuthCommand {
	if s.isPassword() {
		return &AuthCommand{
			SessionHandle:     HandlePW,
			SessionAttributes: AttrContinueSession,
			HMAC:              s.entityAuthValue()}
	}

	var hmac []byte
	if s.isAuth() {
		hmac = s.computeCommandHMAC(commandCode, commandHandles, cpBytes)
	}

	return &AuthCommand{
		SessionHandle:     s.session.Handle(),
		Nonce:             s.session.Data().NonceCaller,
		SessionAttributes: s.session.attrs,
		HMAC:              hmac}
}

func (s *sessionParam) computeResponseHMAC(resp AuthResponse, commandCode CommandCode, responseCode ResponseCode, rpBytes []byte) ([]byte, bool) {
	data := s.session.Data()
	rpHash := cryptComputeRpHash(data.HashAlg, responseCode, commandCode, rpBytes)
	return s.computeHMAC(rpHash, data.NonceTPM, data.NonceCaller, resp.SessionAttributes)
}

func (s *sessionParam) processResponseAuth(resp AuthResponse, commandCode CommandCode, responseCode ResponseCode, rpBytes []byte) error {
	if s.isPassword() {
		if len(resp.HMAC) != 0 {
			return errors.New("unexpected HMAC")
		}
		return nil
	}

	data := s.session.Data()
	data.NonceTPM = resp.Nonce

	if s.isAuth() {
		hmac, authRequired := s.computeResponseHMAC(resp, commandCode, responseCode, rpBytes)
		if authRequired && !bytes.Equal(hmac, resp.HMAC) {
			return errors.New("incorrect HMAC")
		}
	}

	// The TPM retires the session if it responds with continueSession clear.
	if resp.SessionAttributes&AttrContinueSession == 0 {
		s.session.invalidate()
	}

	return nil
}

// sessionParams collects the sessions associated with a single command.
type sessionParams struct {
	sessions []*sessionParam
}

func (p *sessionParams) validateAndAppend(s *sessionParam) error {
	if len(p.sessions) >= maxAuthAreaSessions {
		return fmt.Errorf("too many sessions - maximum is %d", maxAuthAreaSessions)
	}

	if s.session != nil {
		if err := s.session.usable(); err != nil {
			return err
		}
		data := s.session.Data()
		if s.isAuth() && data.SessionType != SessionTypeHMAC {
			return errors.New("invalid session type for authorization")
		}
	}

	p.sessions = append(p.sessions, s)
	return nil
}

// appendSessionForResource appends an authorization for the specified
// resource. A nil session selects a plaintext password authorization.
func (p *sessionParams) appendSessionForResource(session SessionContext, resource ResourceContext) error {
	s := &sessionParam{associatedContext: resource}

	if session != nil {
		sc, isSessionContext := session.(*sessionContext)
		if !isSessionContext {
			return errors.New("unsupported session type")
		}
		s.session = sc

		if err := sc.usable(); err != nil {
			return err
		}

		// The authorization value of the associated entity contributes to the
		// HMAC key unless the session is bound to that entity.
		data := sc.Data()
		switch {
		case !data.IsBound:
			s.includeAuthValue = true
		default:
			bindName := computeBindName(resource.Name(), s.entityAuthValue())
			s.includeAuthValue = !bytes.Equal(bindName, data.BoundEntity)
		}
	}

	return p.validateAndAppend(s)
}

// appendExtraSession appends a session that is not used for authorization.
func (p *sessionParams) appendExtraSession(session SessionContext) error {
	if session == nil {
		return nil
	}

	sc, isSessionContext := session.(*sessionContext)
	if !isSessionContext {
		return errors.New("unsupported session type")
	}

	return p.validateAndAppend(&sessionParam{session: sc})
}

func (p *sessionParams) computeCallerNonces(nonceSource io.Reader) error {
	for _, s := range p.sessions {
		if s.session == nil {
			continue
		}
		if err := cryptComputeNonce(nonceSource, s.session.Data().NonceCaller); err != nil {
			return xerrors.Errorf("cannot compute new caller nonce: %w", err)
		}
	}
	return nil
}

func (p *sessionParams) buildCommandAuthArea(nonceSource io.Reader, commandCode CommandCode, commandHandles []Name, cpBytes []byte) ([]AuthCommand, error) {
	if err := p.computeCallerNonces(nonceSource); err != nil {
		return nil, err
	}

	var area []AuthCommand
	for _, s := range p.sessions {
		area = append(area, *s.buildCommandAuth(commandCode, commandHandles, cpBytes))
	}

	return area, nil
}

func (p *sessionParams) processResponseAuthArea(authResponses []AuthResponse, commandCode CommandCode, responseCode ResponseCode, rpBytes []byte) error {
	if len(authResponses) != len(p.sessions) {
		return fmt.Errorf("unexpected number of response auths (got %d, expected %d)", len(authResponses), len(p.sessions))
	}

	for i, resp := range authResponses {
		if err := p.sessions[i].processResponseAuth(resp, commandCode, responseCode, rpBytes); err != nil {
			return fmt.Errorf("encountered an error for session at index %d: %v", i, err)
		}
	}

	return nil
}

// handleSessionError converts a session or authorization related TPM error in
// to the local view of the affected session. A nonce mismatch means the local
// session state has diverged from the TPM's - the session cannot be used
// again, so it is invalidated and the error is reported as a
// *SessionExpiredError.
func (p *sessionParams) handleSessionError(err error) error {
	var se *TPMSessionError
	if !AsTPMSessionError(err, ErrorNonce, AnyCommandCode, AnySessionIndex, &se) {
		return err
	}

	index := se.Index - 1
	if index < 0 || index >= len(p.sessions) || p.sessions[index].session == nil {
		return err
	}

	session := p.sessions[index].session
	handle := session.Handle()
	session.invalidate()

	return &SessionExpiredError{handle, fmt.Sprintf("the TPM rejected the session nonce (%v)", err)}
}
