// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package tpm2 implements an API for communicating with TPM 2.0 devices from
pre-OS environments such as UEFI boot services, where a boot loader needs to
measure components to PCRs, collect entropy and prove the resulting PCR state
with a quote before handing over to an operating system.

This documentation refers to TPM commands and types that are described in more
detail in the TPM 2.0 Library Specification, which can be found at
https://trustedcomputinggroup.org/resource/tpm-library-specification/.
Knowledge of this specification is assumed in this documentation.

The core type by which consumers of this package communicate with a TPM is
TPMContext, which is created over a Transport. Communication with Linux TPM
character devices (see the linux subpackage) and TPM simulators implementing
the Microsoft TPM2 simulator interface (see the mssim subpackage) is
supported, and firmware environments provide their own Transport over
whatever submission mechanism the platform exposes.

In order to create a new TPMContext that can be used to communicate with a
Linux TPM character device:

	transport, err := linux.OpenDevice("/dev/tpm0")
	if err != nil {
		return err
	}
	tpm := tpm2.NewTPMContext(transport)

# Parameter marshalling and unmarshalling

This package marshals go types to and from the TPM wire format using the mu
subpackage, which defines the mapping between TPM types and go types - sized
buffers, lists, structures and unions are all expressed as ordinary go values.
Command parameters are supplied to TPMContext methods as go values and
marshalled automatically, and response parameters are unmarshalled into
pointers supplied by the caller.

# Authorization

Commands that operate on an entity require an authorization for that entity.
Two types of authorization are supported by this package:

  - Cleartext password: the authorization value set with
    ResourceContext.SetAuthValue is sent to the TPM in the clear.
  - HMAC session: a session created with TPMContext.StartAuthSession and the
    type SessionTypeHMAC demonstrates knowledge of the authorization value
    without transmitting it. Sessions may be bound to an entity at creation
    time, in which case the bound entity's authorization value contributes to
    the session key.

Sessions are single use by default. Setting AttrContinueSession keeps a
session alive across commands, with this package tracking the nonce rotation
that each use performs. A session that the TPM has retired, or whose nonces no
longer match the TPM's, fails subsequent uses with a SessionExpiredError
rather than being silently recreated.

# Error handling

Errors returned from the TPM are unpacked into *TPMError, *TPMParameterError,
*TPMHandleError and *TPMSessionError values that record which argument the
TPM complained about. Transport failures surface as *TransportError,
*TransportTimeoutError or *TransportUnavailableError. Commands that only read
from the TPM are retried once after a transport timeout; commands with side
effects are never retried.
*/
package tpm2
