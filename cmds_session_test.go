// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2_test

import (
	"bytes"
	"crypto"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/canonical/go-sp800.108-kdf"

	. "gopkg.in/check.v1"

	. "github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
	"github.com/ChocolateLoverRaj/uefi-tpm2/testutil"
)

type sessionSuite struct {
	scriptedSuite
}

var _ = Suite(&sessionSuite{})

func (s *sessionSuite) SetUpTest(c *C) {
	s.scriptedSuite.SetUpTest(c)
	s.tpm.SetNonceSource(fixedByteReader(0xa5))
}

// startSession scripts a successful TPM2_StartAuthSession exchange and
// returns the created session.
func (s *sessionSuite) startSession(c *C, bind ResourceContext, sessionType SessionType, handle Handle, nonceTPM Nonce) SessionContext {
	s.transport.QueueResponse(CommandStartAuthSession,
		makeResponsePacket(ResponseSuccess, &handle, mu.MustMarshalToBytes(nonceTPM), nil))

	session, err := s.tpm.StartAuthSession(nil, bind, sessionType, nil, HashAlgorithmSHA256)
	c.Assert(err, IsNil)
	return session
}

// The nonce source installed in SetUpTest produces this value for every
// 32-byte caller nonce.
func callerNonce() Nonce {
	return Nonce(bytes.Repeat([]byte{0xa5}, 32))
}

func authSessionHMAC(key []byte, pHash []byte, nonceNewer, nonceOlder Nonce, attrs SessionAttributes) Auth {
	h := hmac.New(sha256.New, key)
	h.Write(pHash)
	h.Write(nonceNewer)
	h.Write(nonceOlder)
	h.Write([]byte{uint8(attrs)})
	return h.Sum(nil)
}

func commandHMAC(key []byte, command CommandCode, names []Name, cpBytes []byte, nonceCaller, nonceTPM Nonce, attrs SessionAttributes) Auth {
	h := sha256.New()
	binary.Write(h, binary.BigEndian, command)
	for _, name := range names {
		h.Write(name)
	}
	h.Write(cpBytes)
	return authSessionHMAC(key, h.Sum(nil), nonceCaller, nonceTPM, attrs)
}

func responseHMAC(key []byte, command CommandCode, rpBytes []byte, nonceTPM, nonceCaller Nonce, attrs SessionAttributes) Auth {
	h := sha256.New()
	binary.Write(h, binary.BigEndian, ResponseSuccess)
	binary.Write(h, binary.BigEndian, command)
	h.Write(rpBytes)
	return authSessionHMAC(key, h.Sum(nil), nonceTPM, nonceCaller, attrs)
}

func (s *sessionSuite) TestStartAuthSessionUnbound(c *C) {
	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	session := s.startSession(c, nil, SessionTypeHMAC, Handle(0x02000000), nonceTPM)

	c.Check(session.Handle(), Equals, Handle(0x02000000))
	c.Check(session.NonceTPM(), DeepEquals, nonceTPM)
	c.Check(session.Attrs(), Equals, SessionAttributes(0))

	handles, _, parameters := s.mustUnmarshalCommand(c)
	c.Check(handles, DeepEquals, HandleList{HandleNull, HandleNull})
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(
		callerNonce(), EncryptedSecret(nil), SessionTypeHMAC, SymDefNull(), HashAlgorithmSHA256))
}

func (s *sessionSuite) TestStartAuthSessionSaltedUnsupported(c *C) {
	_, err := s.tpm.StartAuthSession(s.tpm.OwnerHandleContext(), nil, SessionTypeHMAC, nil, HashAlgorithmSHA256)
	c.Check(err, ErrorMatches, "salted sessions are not supported")
}

func (s *sessionSuite) TestStartAuthSessionWrongHandleType(c *C) {
	handle := Handle(0x80000000)
	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	s.transport.QueueResponse(CommandStartAuthSession,
		makeResponsePacket(ResponseSuccess, &handle, mu.MustMarshalToBytes(nonceTPM), nil))

	_, err := s.tpm.StartAuthSession(nil, nil, SessionTypeHMAC, nil, HashAlgorithmSHA256)
	var re *InvalidResponseError
	c.Check(errors.As(err, &re), testutil.IsTrue)
}

func (s *sessionSuite) TestStartAuthSessionWrongNonceSize(c *C) {
	handle := Handle(0x02000000)
	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 16))
	s.transport.QueueResponse(CommandStartAuthSession,
		makeResponsePacket(ResponseSuccess, &handle, mu.MustMarshalToBytes(nonceTPM), nil))

	_, err := s.tpm.StartAuthSession(nil, nil, SessionTypeHMAC, nil, HashAlgorithmSHA256)
	var re *InvalidResponseError
	c.Check(errors.As(err, &re), testutil.IsTrue)
}

func (s *sessionSuite) TestHMACSessionAuthCycle(c *C) {
	authValue := []byte("passphrase")
	pcr := s.tpm.PCRHandleContext(7)
	pcr.SetAuthValue(authValue)

	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	session := s.startSession(c, nil, SessionTypeHMAC, Handle(0x02000000), nonceTPM)

	digests := TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0xaa}, 32)}}
	cpBytes := mu.MustMarshalToBytes(digests)

	// The session is unbound, so the HMAC key is the authorization value of
	// the entity being authorized.
	expectedCmdHMAC := commandHMAC(authValue, CommandPCRExtend, []Name{pcr.Name()}, cpBytes,
		callerNonce(), nonceTPM, AttrContinueSession)

	newNonceTPM := Nonce(bytes.Repeat([]byte{0x3c}, 32))
	respHMAC := responseHMAC(authValue, CommandPCRExtend, nil, newNonceTPM, callerNonce(), AttrContinueSession)
	auths := []AuthResponse{{Nonce: newNonceTPM, SessionAttributes: AttrContinueSession, HMAC: respHMAC}}
	s.transport.QueueResponse(CommandPCRExtend, makeResponsePacket(ResponseSuccess, nil, nil, auths))

	c.Check(s.tpm.PCRExtend(pcr, digests, session.WithAttrs(AttrContinueSession)), IsNil)

	_, authArea, _ := s.mustUnmarshalCommand(c)
	c.Assert(authArea, HasLen, 1)
	c.Check(authArea[0], DeepEquals, AuthCommand{
		SessionHandle:     Handle(0x02000000),
		Nonce:             callerNonce(),
		SessionAttributes: AttrContinueSession,
		HMAC:              expectedCmdHMAC})

	// The TPM nonce rotates on every use and the rotation is observed by
	// every SessionContext that shares the session state.
	c.Check(session.NonceTPM(), DeepEquals, newNonceTPM)
	c.Check(session.Handle(), Equals, Handle(0x02000000))
}

func (s *sessionSuite) TestHMACSessionBound(c *C) {
	authValue := []byte("bound-auth")
	pcr := s.tpm.PCRHandleContext(5)
	pcr.SetAuthValue(authValue)

	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	session := s.startSession(c, pcr, SessionTypeHMAC, Handle(0x02000001), nonceTPM)

	handles, _, _ := s.mustUnmarshalCommand(c)
	c.Check(handles, DeepEquals, HandleList{HandleNull, Handle(5)})

	// A session with a bind entity derives a session key, and the bind
	// entity's authorization value is part of the derivation rather than
	// being appended to the HMAC key when that entity is authorized.
	sessionKey := kdf.CounterModeKey(kdf.NewHMACPRF(crypto.SHA256), authValue, []byte("ATH"),
		append(append([]byte(nil), nonceTPM...), callerNonce()...), 256)

	digests := TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0xbb}, 32)}}
	cpBytes := mu.MustMarshalToBytes(digests)
	expectedCmdHMAC := commandHMAC(sessionKey, CommandPCRExtend, []Name{pcr.Name()}, cpBytes,
		callerNonce(), nonceTPM, AttrContinueSession)

	newNonceTPM := Nonce(bytes.Repeat([]byte{0x3c}, 32))
	respHMAC := responseHMAC(sessionKey, CommandPCRExtend, nil, newNonceTPM, callerNonce(), AttrContinueSession)
	auths := []AuthResponse{{Nonce: newNonceTPM, SessionAttributes: AttrContinueSession, HMAC: respHMAC}}
	s.transport.QueueResponse(CommandPCRExtend, makeResponsePacket(ResponseSuccess, nil, nil, auths))

	c.Check(s.tpm.PCRExtend(pcr, digests, session.WithAttrs(AttrContinueSession)), IsNil)

	_, authArea, _ := s.mustUnmarshalCommand(c)
	c.Assert(authArea, HasLen, 1)
	c.Check(authArea[0].HMAC, DeepEquals, expectedCmdHMAC)
}

func (s *sessionSuite) TestHMACSessionBadResponseHMAC(c *C) {
	pcr := s.tpm.PCRHandleContext(7)
	pcr.SetAuthValue([]byte("passphrase"))

	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	session := s.startSession(c, nil, SessionTypeHMAC, Handle(0x02000000), nonceTPM)

	digests := TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0xaa}, 32)}}

	newNonceTPM := Nonce(bytes.Repeat([]byte{0x3c}, 32))
	auths := []AuthResponse{{Nonce: newNonceTPM, SessionAttributes: AttrContinueSession, HMAC: Auth(bytes.Repeat([]byte{0xee}, 32))}}
	s.transport.QueueResponse(CommandPCRExtend, makeResponsePacket(ResponseSuccess, nil, nil, auths))

	err := s.tpm.PCRExtend(pcr, digests, session.WithAttrs(AttrContinueSession))
	var re *InvalidResponseError
	c.Check(errors.As(err, &re), testutil.IsTrue)
}

func (s *sessionSuite) TestSessionRetiredByTPM(c *C) {
	// A response with continueSession clear means the TPM flushed the
	// session. Further uses fail without submitting anything.
	authValue := []byte("passphrase")
	pcr := s.tpm.PCRHandleContext(7)
	pcr.SetAuthValue(authValue)

	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	session := s.startSession(c, nil, SessionTypeHMAC, Handle(0x02000000), nonceTPM)

	digests := TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0xaa}, 32)}}

	newNonceTPM := Nonce(bytes.Repeat([]byte{0x3c}, 32))
	respHMAC := responseHMAC(authValue, CommandPCRExtend, nil, newNonceTPM, callerNonce(), 0)
	auths := []AuthResponse{{Nonce: newNonceTPM, HMAC: respHMAC}}
	s.transport.QueueResponse(CommandPCRExtend, makeResponsePacket(ResponseSuccess, nil, nil, auths))

	c.Check(s.tpm.PCRExtend(pcr, digests, session), IsNil)
	c.Check(session.Handle(), Equals, HandleUnassigned)

	err := s.tpm.PCRExtend(pcr, digests, session)
	var se *SessionExpiredError
	c.Check(errors.As(err, &se), testutil.IsTrue)
}

func (s *sessionSuite) TestSessionNonceRejected(c *C) {
	// TPM_RC_NONCE for the session means the local state no longer matches
	// the TPM's. The session is invalidated and reported as expired.
	pcr := s.tpm.PCRHandleContext(7)

	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	session := s.startSession(c, nil, SessionTypeHMAC, Handle(0x02000000), nonceTPM)

	// Format-one response code with E=0x0f (TPM_RC_NONCE) and N=9 (session 1).
	rc := ResponseCode(0x80 | 0x0f | 9<<8)
	s.transport.QueueResponse(CommandPCRExtend, makeErrorResponse(rc))

	digests := TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0xaa}, 32)}}
	err := s.tpm.PCRExtend(pcr, digests, session.WithAttrs(AttrContinueSession))
	var se *SessionExpiredError
	c.Assert(errors.As(err, &se), testutil.IsTrue)
	c.Check(se.Handle, Equals, Handle(0x02000000))
	c.Check(session.Handle(), Equals, HandleUnassigned)
}

func (s *sessionSuite) TestPolicySessionCannotAuthorize(c *C) {
	pcr := s.tpm.PCRHandleContext(7)

	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	session := s.startSession(c, nil, SessionTypePolicy, Handle(0x03000000), nonceTPM)

	digests := TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0xaa}, 32)}}
	err := s.tpm.PCRExtend(pcr, digests, session)
	c.Check(err, ErrorMatches, ".*invalid session type for authorization")
}

func (s *sessionSuite) TestExtraSession(c *C) {
	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	session := s.startSession(c, nil, SessionTypeHMAC, Handle(0x02000000), nonceTPM)

	random := Digest{0x1, 0x2}
	newNonceTPM := Nonce(bytes.Repeat([]byte{0x3c}, 32))
	auths := []AuthResponse{{Nonce: newNonceTPM, SessionAttributes: AttrContinueSession}}
	s.transport.QueueResponse(CommandGetRandom,
		makeResponsePacket(ResponseSuccess, nil, mu.MustMarshalToBytes(random), auths))

	out, err := s.tpm.GetRandom(2, session.WithAttrs(AttrContinueSession))
	c.Check(err, IsNil)
	c.Check(out, DeepEquals, random)

	// A session that doesn't authorize anything carries no HMAC.
	_, authArea, _ := s.mustUnmarshalCommand(c)
	c.Assert(authArea, HasLen, 1)
	c.Check(authArea[0].SessionHandle, Equals, Handle(0x02000000))
	c.Check(authArea[0].HMAC, HasLen, 0)
	c.Check(session.NonceTPM(), DeepEquals, newNonceTPM)
}

func (s *sessionSuite) TestFlushContext(c *C) {
	nonceTPM := Nonce(bytes.Repeat([]byte{0x5a}, 32))
	session := s.startSession(c, nil, SessionTypeHMAC, Handle(0x02000000), nonceTPM)

	s.transport.QueueResponse(CommandFlushContext, makeSuccessResponse())
	c.Check(s.tpm.FlushContext(session), IsNil)

	// The flushed handle is a command parameter, not a command handle.
	handles, _, parameters := s.mustUnmarshalCommand(c)
	c.Check(handles, HasLen, 0)
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(Handle(0x02000000)))

	c.Check(session.Handle(), Equals, HandleUnassigned)

	digests := TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0xaa}, 32)}}
	err := s.tpm.PCRExtend(s.tpm.PCRHandleContext(7), digests, session)
	var se *SessionExpiredError
	c.Check(errors.As(err, &se), testutil.IsTrue)
}

func (s *sessionSuite) TestFlushContextNil(c *C) {
	c.Check(s.tpm.FlushContext(nil), IsNil)
}
