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

package utils

import (
	"bytes"
	"reflect"
	"time"

	"github.com/ugorji/go/codec"
)

var (
	msgpackHandle = func() *codec.MsgpackHandle {
		h := &codec.MsgpackHandle{
			WriteExt: true,
		}
		h.RawToString = true
		return h
	}()
	canonicalHandle = func() *codec.MsgpackHandle {
		h := &codec.MsgpackHandle{
			WriteExt: true,
		}
		h.RawToString = true
		h.Canonical = true
		h.MapType = reflect.TypeOf(map[string]interface{}(nil))
		return h
	}()
)

// DecodeMsgPack reverses the encode operation on a byte slice input.
func DecodeMsgPack(buf []byte, out interface{}) error {
	return codec.NewDecoderBytes(buf, msgpackHandle).Decode(out)
}

// EncodeMsgPack writes an encoded object to a new bytes buffer.
func EncodeMsgPack(in interface{}) (*bytes.Buffer, error) {
	buf := bytes.NewBuffer(nil)
	err := codec.NewEncoder(buf, msgpackHandle).Encode(in)
	return buf, err
}

// EncodeMsgPackCanonical encodes in with sorted map keys, so that equal values always
// produce equal bytes.
func EncodeMsgPackCanonical(in interface{}) (out []byte, err error) {
	err = codec.NewEncoderBytes(&out, canonicalHandle).Encode(in)
	return
}

// DecodeMsgPackCanonical reverses EncodeMsgPackCanonical.
func DecodeMsgPackCanonical(buf []byte, out interface{}) error {
	return codec.NewDecoderBytes(buf, canonicalHandle).Decode(out)
}

// NormalizeTime drops the monotonic clock reading and the location of t.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Round(0)
}
