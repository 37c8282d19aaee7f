// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package testutil contains helpers for testing code that uses the tpm2 package,
either against canned responses, a TPM simulator or a real TPM character
device.
*/
package testutil

import (
	"flag"
	"fmt"

	"github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/linux"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mssim"
)

// TPMBackendType indicates the type of TPM connection used for testing.
type TPMBackendType int

const (
	// TPMBackendNone indicates that no TPM is available. Tests that require
	// one should be skipped.
	TPMBackendNone TPMBackendType = iota

	// TPMBackendDevice indicates that tests will run against a Linux TPM
	// character device.
	TPMBackendDevice

	// TPMBackendMssim indicates that tests will run against a TPM simulator
	// implementing the Microsoft TPM2 simulator interface.
	TPMBackendMssim
)

var (
	// TPMBackend is the type of TPM connection that tests which need a TPM
	// will use.
	TPMBackend TPMBackendType = TPMBackendNone

	// TPMDevicePath is the path of the TPM character device used when
	// TPMBackend is TPMBackendDevice.
	TPMDevicePath string = "/dev/tpm0"

	// MssimPort is the port number of the TPM simulator command channel used
	// when TPMBackend is TPMBackendMssim. The platform channel runs on the
	// next port number.
	MssimPort uint = 2321
)

type tpmBackendFlag TPMBackendType

func (v tpmBackendFlag) Set(s string) error {
	if s == "true" {
		TPMBackend = TPMBackendType(v)
	} else if TPMBackend == TPMBackendType(v) {
		TPMBackend = TPMBackendNone
	}
	return nil
}

func (v tpmBackendFlag) String() string {
	return fmt.Sprintf("%v", TPMBackend == TPMBackendType(v))
}

func (v tpmBackendFlag) IsBoolFlag() bool { return true }

// AddCommandLineFlags adds the command line flags used by this package to the
// flag set. It should be called from an init function in the test package.
func AddCommandLineFlags() {
	flag.Var(tpmBackendFlag(TPMBackendDevice), "use-tpm", "Whether to use a TPM character device for testing (eg, /dev/tpm0)")
	flag.Var(tpmBackendFlag(TPMBackendMssim), "use-mssim", "Whether to use the TPM simulator for testing")
	flag.StringVar(&TPMDevicePath, "tpm-path", "/dev/tpm0", "The path of the TPM character device to use for testing (default: /dev/tpm0)")
	flag.UintVar(&MssimPort, "mssim-port", 2321, "The port number of the TPM simulator command channel (default: 2321)")
}

// NewTransport returns a connection to the TPM selected by the test command
// line flags, or nil if no TPM was selected.
func NewTransport() (tpm2.Transport, error) {
	switch TPMBackend {
	case TPMBackendDevice:
		return linux.OpenDevice(TPMDevicePath)
	case TPMBackendMssim:
		return mssim.OpenConnection("", MssimPort)
	default:
		return nil, nil
	}
}
