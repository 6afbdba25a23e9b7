/*
 * Copyright 2018 The CovenantSQL Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

// SignedConfirm is the finalized message of a bilateral agreement: the header and the
// signature of both parties over its content hash.
type SignedConfirm struct {
	Header               Header
	SignatureBenefactor  []byte
	SignatureBeneficiary []byte
}

// Signature returns the signature of role r.
func (m *SignedConfirm) Signature(r Role) []byte {
	if r == Beneficiary {
		return m.SignatureBeneficiary
	}
	return m.SignatureBenefactor
}

// SetSignature sets the signature of role r.
func (m *SignedConfirm) SetSignature(r Role, sig []byte) {
	if r == Beneficiary {
		m.SignatureBeneficiary = sig
		return
	}
	m.SignatureBenefactor = sig
}
