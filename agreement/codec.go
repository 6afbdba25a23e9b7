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

package agreement

import (
	"bytes"

	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/utils"
)

type envelope struct {
	Type Kind
	Body []byte
}

// Codec encodes agreements into block payloads and back.
type Codec struct{}

// Encode returns the canonical payload of m. m itself is left untouched.
func (Codec) Encode(m Model) (out []byte, err error) {
	if m == nil {
		return nil, ErrNilAgreement
	}
	if _, ok := factories[m.Kind()]; !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "kind %q", m.Kind())
	}
	c := deepcopy.Copy(m).(Model)
	c.normalize()
	var body []byte
	if body, err = utils.EncodeMsgPackCanonical(c); err != nil {
		return nil, errors.Wrapf(err, "encode %s body failed", m.Kind())
	}
	if out, err = utils.EncodeMsgPackCanonical(&envelope{Type: m.Kind(), Body: body}); err != nil {
		return nil, errors.Wrap(err, "encode envelope failed")
	}
	return
}

// Decode reverses Encode.
func (Codec) Decode(payload []byte) (m Model, err error) {
	if len(payload) == 0 {
		return nil, errors.Wrap(ErrMalformedPayload, "empty payload")
	}
	var env envelope
	if err = utils.DecodeMsgPackCanonical(payload, &env); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}
	factory, ok := factories[env.Type]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "kind %q", env.Type)
	}
	m = factory()
	if err = utils.DecodeMsgPackCanonical(env.Body, m); err != nil {
		return nil, errors.Wrapf(ErrMalformedPayload, "decode %s body: %v", env.Type, err)
	}
	m.normalize()
	return
}

// Equal reports whether two payloads carry the same logical agreement.
func (c Codec) Equal(a, b []byte) (equal bool, err error) {
	var ma, mb Model
	if ma, err = c.Decode(a); err != nil {
		return
	}
	if mb, err = c.Decode(b); err != nil {
		return
	}
	var ea, eb []byte
	if ea, err = c.Encode(ma); err != nil {
		return
	}
	if eb, err = c.Encode(mb); err != nil {
		return
	}
	return bytes.Equal(ea, eb), nil
}

// DecodeAgreement implements types.AgreementCodec.
func (c Codec) DecodeAgreement(payload []byte) (interface{}, error) {
	return c.Decode(payload)
}

// EqualAgreements implements types.AgreementCodec.
func (c Codec) EqualAgreements(a, b []byte) (bool, error) {
	return c.Equal(a, b)
}
