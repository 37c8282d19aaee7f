// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package testutil

import (
	"bytes"

	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"

	. "gopkg.in/check.v1"
)

type isTrueChecker struct {
	*CheckerInfo
}

// IsTrue determines whether a boolean value is true.
var IsTrue Checker = &isTrueChecker{
	&CheckerInfo{Name: "IsTrue", Params: []string{"value"}}}

func (checker *isTrueChecker) Check(params []interface{}, names []string) (result bool, error string) {
	value, ok := params[0].(bool)
	if !ok {
		return false, names[0] + " is not a bool"
	}
	return value, ""
}

type isFalseChecker struct {
	*CheckerInfo
}

// IsFalse determines whether a boolean value is false.
var IsFalse Checker = &isFalseChecker{
	&CheckerInfo{Name: "IsFalse", Params: []string{"value"}}}

func (checker *isFalseChecker) Check(params []interface{}, names []string) (result bool, error string) {
	value, ok := params[0].(bool)
	if !ok {
		return false, names[0] + " is not a bool"
	}
	return !value, ""
}

type tpmValueDeepEqualsChecker struct {
	*CheckerInfo
}

// TPMValueDeepEquals determines whether two values are deeply equal by
// comparing their TPM wire format representations. Values that cannot be
// marshalled to the TPM wire format are never equal.
var TPMValueDeepEquals Checker = &tpmValueDeepEqualsChecker{
	&CheckerInfo{Name: "TPMValueDeepEquals", Params: []string{"obtained", "expected"}}}

func (checker *tpmValueDeepEqualsChecker) Check(params []interface{}, names []string) (result bool, error string) {
	obtained, err := mu.MarshalToBytes(params[0])
	if err != nil {
		return false, "cannot marshal " + names[0] + ": " + err.Error()
	}
	expected, err := mu.MarshalToBytes(params[1])
	if err != nil {
		return false, "cannot marshal " + names[1] + ": " + err.Error()
	}
	return bytes.Equal(obtained, expected), ""
}
