// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package wire_test

import (
	"testing"

	"github.com/danjacques/gosc2replay/protocol/wire"
	"github.com/danjacques/gosc2replay/support/cursor"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func TestWire(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Wire")
}

var _ = Describe("Versioned encoding", func() {
	It("decodes every scalar kind that it writes", func() {
		var w wire.VersionedWriter
		w.Int(-12345).Bool(true).U8(7).U32(0xDEADBEEF).U64(1 << 40).Blob([]byte("Marine"))

		c := cursor.NewBytes(w.Bytes())

		c, i, err := wire.Int(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(i).To(Equal(int64(-12345)))

		c, b, err := wire.Bool(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(BeTrue())

		c, u8, err := wire.U8(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(u8).To(Equal(uint8(7)))

		c, u32, err := wire.U32(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(u32).To(Equal(uint32(0xDEADBEEF)))

		c, u64, err := wire.U64(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(u64).To(Equal(uint64(1 << 40)))

		c, blob, err := wire.Blob(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(blob)).To(Equal("Marine"))
		Expect(c.Done()).To(BeTrue())
	})

	It("reports a tag mismatch without advancing", func() {
		var w wire.VersionedWriter
		w.Blob([]byte("x"))

		c := cursor.NewBytes(w.Bytes())
		nc, _, err := wire.Int(c)
		Expect(cursor.IsTagMismatch(err)).To(BeTrue())
		Expect(err.(*cursor.TagMismatchError).Want).To(Equal(byte(wire.TagVInt)))
		Expect(err.(*cursor.TagMismatchError).Got).To(Equal(byte(wire.TagBlob)))
		Expect(nc).To(Equal(c))
	})

	It("validates the marker of the next value", func() {
		var w wire.VersionedWriter
		w.U32(3)

		c := cursor.NewBytes(w.Bytes())
		nc, err := wire.Expect(c, wire.TagU32)
		Expect(err).ToNot(HaveOccurred())
		Expect(nc.Offset()).To(Equal(1))

		nc, err = wire.Expect(c, wire.TagU8)
		Expect(cursor.IsTagMismatch(err)).To(BeTrue())
		Expect(nc).To(Equal(c))
	})

	It("rejects lengths that exceed the buffer", func() {
		buf := append([]byte{byte(wire.TagBlob)}, cursor.AppendVLQ(nil, 1000)...)
		_, _, err := wire.Blob(cursor.NewBytes(buf))
		Expect(err).To(HaveOccurred())
	})

	It("decodes optional values", func() {
		v := int64(42)
		var w wire.VersionedWriter
		w.OptionalInt(&v).OptionalInt(nil).OptionalBlob([]byte{}).OptionalBlob(nil)

		c := cursor.NewBytes(w.Bytes())
		c, iv, err := wire.OptionalInt(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(*iv).To(Equal(int64(42)))

		c, iv, err = wire.OptionalInt(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(iv).To(BeNil())

		c, bv, err := wire.OptionalBlob(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(bv).ToNot(BeNil())
		Expect(bv).To(BeEmpty())

		c, bv, err = wire.OptionalBlob(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(bv).To(BeNil())
		Expect(c.Done()).To(BeTrue())
	})

	Context("structs", func() {
		var buf []byte

		BeforeEach(func() {
			var w wire.VersionedWriter
			w.Struct(4)
			w.Field(0).Int(5)
			// An unknown nested field that must be skipped.
			w.Field(7).Struct(2).Field(0).Array(2).Int(1).Int(2).Field(1).Choice(3).Optional(true).U64(9)
			w.Field(1).Blob([]byte("Zealot"))
			w.Field(9).BitArray(12, []byte{0xFF, 0x0F})
			w.Int(99) // Trailing data after the struct.
			buf = w.Bytes()
		})

		It("passes known fields to the callback and skips the rest", func() {
			var (
				seen  wire.FieldSet
				index int64
				name  string
			)
			c, err := wire.DecodeStruct(cursor.NewBytes(buf), func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
				var err error
				switch tag {
				case 0:
					c, index, err = wire.Int(c)
				case 1:
					var v []byte
					c, v, err = wire.Blob(c)
					name = string(v)
				default:
					return c, false, nil
				}
				seen.Add(tag)
				return c, true, err
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(index).To(Equal(int64(5)))
			Expect(name).To(Equal("Zealot"))
			Expect(seen.Require("Test", wire.Field{Tag: 0, Name: "index"}, wire.Field{Tag: 1, Name: "name"})).To(Succeed())

			By("leaving the cursor at the trailing value")
			_, v, err := wire.Int(c)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(int64(99)))
		})

		It("skips an entire struct", func() {
			c, err := wire.SkipInstance(cursor.NewBytes(buf))
			Expect(err).ToNot(HaveOccurred())

			_, v, err := wire.Int(c)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(int64(99)))
		})

		It("reports missing required fields as a typed error", func() {
			var seen wire.FieldSet
			seen.Add(0)
			err := seen.Require("UnitBorn", wire.Field{Tag: 0, Name: "m_unitTagIndex"}, wire.Field{Tag: 2, Name: "m_unitTypeName"})
			Expect(wire.IsMissingField(err)).To(BeTrue())
			Expect(err.Error()).To(Equal(`UnitBorn: missing required field "m_unitTypeName"`))
		})

		It("reports truncation inside a struct", func() {
			_, err := wire.DecodeStruct(cursor.NewBytes(buf[:len(buf)-6]), func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
				return c, false, nil
			})
			Expect(cursor.IsTruncated(err)).To(BeTrue())
		})
	})

	It("refuses unknown markers and runaway nesting", func() {
		_, err := wire.SkipInstance(cursor.NewBytes([]byte{0x42}))
		Expect(err).To(HaveOccurred())

		deep := make([]byte, 0, 200)
		for i := 0; i < 100; i++ {
			deep = append(deep, byte(wire.TagChoice), 0)
		}
		_, err = wire.SkipInstance(cursor.NewBytes(deep))
		Expect(err).To(Equal(wire.ErrSkipDepth))
	})
})

var _ = Describe("Bit-packed encoding", func() {
	DescribeTable("variant tag width",
		func(variants int, width uint) {
			Expect(wire.TagWidth(variants)).To(Equal(width))
		},
		Entry("one variant", 1, uint(0)),
		Entry("two variants", 2, uint(1)),
		Entry("three variants", 3, uint(2)),
		Entry("four variants", 4, uint(2)),
		Entry("five variants", 5, uint(3)),
		Entry("128 variants", 128, uint(7)),
		Entry("129 variants", 129, uint(8)),
	)

	It("decodes composite values that it writes", func() {
		var w cursor.BitWriter
		wire.WritePackedChoice(&w, 2, 4)
		wire.WritePackedBool(&w, true)
		w.WriteInt(-100, 8, -128)
		wire.WritePackedBlob(&w, []byte("Stalker"), 7)
		wire.WritePackedBitArray(&w, []bool{true, false, false, true, true}, 9)
		w.WriteBits(3, 9)

		c := cursor.NewBits(w.Bytes())

		c, tag, err := wire.PackedChoice(c, 4)
		Expect(err).ToNot(HaveOccurred())
		Expect(tag).To(Equal(2))

		c, b, err := wire.PackedOptional(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(BeTrue())

		c, i, err := wire.PackedInt(c, 8, -128)
		Expect(err).ToNot(HaveOccurred())
		Expect(i).To(Equal(int64(-100)))

		c, blob, err := wire.PackedBlob(c, 7)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(blob)).To(Equal("Stalker"))

		c, mask, err := wire.PackedBitArray(c, 9)
		Expect(err).ToNot(HaveOccurred())
		Expect(mask).To(Equal([]bool{true, false, false, true, true}))

		c, n, err := wire.PackedArray(c, 9)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(3))
		Expect(c.ByteAlign().Done()).To(BeTrue())
	})

	It("rejects bit arrays longer than the remaining data", func() {
		var w cursor.BitWriter
		w.WriteBits(500, 9)
		_, _, err := wire.PackedBitArray(cursor.NewBits(w.Bytes()), 9)
		Expect(err).To(Equal(cursor.ErrUnexpectedEOF))
	})
})
