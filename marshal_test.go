package csa

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSaveOpen(t *testing.T) {
	Convey("Given a saved index", t, func() {
		rng := rand.New(rand.NewSource(77))
		text := randomText(rng, 2500, 30)
		dir := t.TempDir()
		before, err := Build(text, Config{Dir: dir, SampleRate: 8})
		So(err, ShouldBeNil)
		So(before.Save(), ShouldBeNil)
		_, err = os.Stat(filepath.Join(dir, manifestName))
		So(err, ShouldBeNil)

		Convey("Open should restore an equivalent index", func() {
			after, err := Open(dir, Config{})
			So(err, ShouldBeNil)
			So(after.ID(), ShouldEqual, before.ID())
			So(after.Len(), ShouldEqual, before.Len())
			So(after.SampleRate(), ShouldEqual, before.SampleRate())
			So(after.EndPos(), ShouldEqual, before.EndPos())
			So(after.Codes(), ShouldResemble, before.Codes())
			So(after.wt.nodes, ShouldEqual, before.wt.nodes)

			for i := uint64(0); i < after.Len(); i += 13 {
				want, _ := before.Locate(i)
				got, err := after.Locate(i)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
				wantPsi, _ := before.Psi(i)
				gotPsi, _ := after.Psi(i)
				So(gotPsi, ShouldEqual, wantPsi)
			}
			for trial := 0; trial < 20; trial++ {
				beg := rng.Intn(len(text) - 5)
				pattern := text[beg : beg+1+rng.Intn(4)]
				So(after.Occurrences(pattern), ShouldResemble, before.Occurrences(pattern))
			}
			So(after.Text(), ShouldResemble, text)
			So(after.Close(), ShouldBeNil)
			_, err = os.Stat(dir)
			So(err, ShouldBeNil)
		})
	})
}

func TestOpenErrors(t *testing.T) {
	Convey("Opening a directory without a manifest should fail", t, func() {
		_, err := Open(t.TempDir(), Config{})
		So(err, ShouldNotBeNil)
		So(os.IsNotExist(errors.Cause(err)), ShouldBeTrue)
	})
	Convey("Opening a garbage manifest should fail", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, manifestName), []byte{0xc1, 0x00, 0x13}, 0o666), ShouldBeNil)
		_, err := Open(dir, Config{})
		So(errors.Is(err, ErrCorruptManifest), ShouldBeTrue)
	})
	Convey("Opening a manifest with inconsistent tables should fail", t, func() {
		for _, corrupt := range []func(idx *Index){
			func(idx *Index) { idx.suffixes = idx.suffixes[:1] },
			func(idx *Index) { idx.positions[1] = 1 << 40 },
			func(idx *Index) { idx.suffixes[2] = 1 << 40 },
			func(idx *Index) { idx.suffixes[2]++ },
			func(idx *Index) { idx.positions[1], idx.positions[2] = idx.positions[2], idx.positions[1] },
			func(idx *Index) { idx.positions[0] = (idx.endPos + 1) % idx.n },
			func(idx *Index) { idx.codes['c'].Count++ },
			func(idx *Index) { idx.c[AlphabetSize]++ },
		} {
			dir := t.TempDir()
			idx, err := Build([]byte("consistency"), Config{Dir: dir, SampleRate: 2})
			So(err, ShouldBeNil)
			corrupt(idx)
			So(idx.Save(), ShouldBeNil)
			_, err = Open(dir, Config{})
			So(errors.Is(err, ErrCorruptManifest), ShouldBeTrue)
		}
	})
}
