package translator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"hackvm/pkg/codegen"
	"hackvm/pkg/vm"
)

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

func tempDir() string {
	dir, err := os.MkdirTemp("", "translator")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(os.RemoveAll, dir)
	return dir
}

var _ = Describe("Discover", func() {
	var dir string

	BeforeEach(func() {
		dir = tempDir()
	})

	It("should plan a single file without bootstrap", func() {
		path := writeFile(dir, "Prog.vm", "push constant 1\n")

		p, err := Discover(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Units).To(Equal([]string{path}))
		Expect(p.Output).To(Equal(filepath.Join(dir, "Prog.asm")))
		Expect(p.Directory).To(BeFalse())
		Expect(p.Bootstrap).To(BeFalse())
	})

	It("should plan a directory in alphabetical order with bootstrap", func() {
		proj := filepath.Join(dir, "Game")
		Expect(os.Mkdir(proj, 0o755)).To(Succeed())
		writeFile(proj, "Sys.vm", "")
		writeFile(proj, "Main.vm", "")
		writeFile(proj, "Ball.vm", "")
		writeFile(proj, "notes.txt", "")
		Expect(os.Mkdir(filepath.Join(proj, "sub.vm"), 0o755)).To(Succeed())

		p, err := Discover(proj)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Units).To(Equal([]string{
			filepath.Join(proj, "Ball.vm"),
			filepath.Join(proj, "Main.vm"),
			filepath.Join(proj, "Sys.vm"),
		}))
		Expect(p.Output).To(Equal(filepath.Join(proj, "Game.asm")))
		Expect(p.Directory).To(BeTrue())
		Expect(p.Bootstrap).To(BeTrue())
	})

	It("should reject a file that is not VM source", func() {
		path := writeFile(dir, "Prog.asm", "")

		_, err := Discover(path)
		var ioErr *IOError
		Expect(errors.As(err, &ioErr)).To(BeTrue())
		Expect(errors.Is(err, ErrNotSource)).To(BeTrue())
	})

	It("should reject a missing path", func() {
		_, err := Discover(filepath.Join(dir, "missing"))
		var ioErr *IOError
		Expect(errors.As(err, &ioErr)).To(BeTrue())
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})

	It("should reject a directory without units", func() {
		_, err := Discover(dir)
		Expect(err).To(MatchError(ContainSubstring("no .vm files")))
	})
})

var _ = Describe("BootstrapMode", func() {
	DescribeTable("Apply",
		func(mode string, directory, want bool) {
			m, err := ParseBootstrapMode(mode)
			Expect(err).NotTo(HaveOccurred())
			p := Plan{Directory: directory}
			m.Apply(&p)
			Expect(p.Bootstrap).To(Equal(want))
		},
		Entry("auto file", "auto", false, false),
		Entry("auto directory", "auto", true, true),
		Entry("on file", "on", false, true),
		Entry("off directory", "off", true, false),
	)

	It("should reject unknown modes", func() {
		_, err := ParseBootstrapMode("sometimes")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		dir = tempDir()
	})

	It("should return units in plan order", func() {
		a := writeFile(dir, "A.vm", "push constant 1\npush constant 2\nadd\n")
		b := writeFile(dir, "B.vm", "// only a comment\npop static 0\n")

		units, err := Load(context.Background(), Plan{Units: []string{b, a}})
		Expect(err).NotTo(HaveOccurred())
		Expect(units).To(HaveLen(2))
		Expect(units[0].Name).To(Equal("B"))
		Expect(units[0].Commands).To(HaveLen(1))
		Expect(units[0].Commands[0].Line).To(Equal(2))
		Expect(units[1].Name).To(Equal("A"))
		Expect(units[1].Path).To(Equal(a))
		Expect(units[1].Commands).To(HaveLen(3))
	})

	It("should report the earliest failing unit", func() {
		a := writeFile(dir, "A.vm", "push constant 1\nfrobnicate\n")
		b := writeFile(dir, "B.vm", "jump\n")

		_, err := Load(context.Background(), Plan{Units: []string{a, b}})
		var uerr *vm.UnrecognizedCommandError
		Expect(errors.As(err, &uerr)).To(BeTrue())
		Expect(uerr.Unit).To(Equal("A"))
		Expect(uerr.Line).To(Equal(2))
		Expect(uerr.Token).To(Equal("frobnicate"))
	})

	It("should not let a quick later failure mask an earlier one", func() {
		var big strings.Builder
		for i := 0; i < 5000; i++ {
			big.WriteString("push constant 1\npop temp 0\n")
		}
		big.WriteString("frobnicate\n")
		paths := []string{writeFile(dir, "Slow.vm", big.String())}
		for _, name := range []string{"C.vm", "D.vm", "E.vm", "F.vm"} {
			paths = append(paths, writeFile(dir, name, "bogus\n"))
		}

		for i := 0; i < 10; i++ {
			_, err := Load(context.Background(), Plan{Units: paths})
			var uerr *vm.UnrecognizedCommandError
			Expect(errors.As(err, &uerr)).To(BeTrue(), "got %v", err)
			Expect(uerr.Unit).To(Equal("Slow"))
			Expect(uerr.Line).To(Equal(10001))
		}
	})

	It("should stop on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Load(ctx, Plan{Units: []string{writeFile(dir, "A.vm", "push constant 1\n")}})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("should wrap read failures", func() {
		_, err := Load(context.Background(), Plan{Units: []string{filepath.Join(dir, "Gone.vm")}})
		var ioErr *IOError
		Expect(errors.As(err, &ioErr)).To(BeTrue())
	})
})

var _ = Describe("Translate", func() {
	unit := func(name, src string) Unit {
		u, err := NewUnit(name, []byte(src))
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	It("should namespace statics per unit", func() {
		sink := &codegen.BufferSink{}
		stats, err := Translate([]Unit{
			unit("Alpha", "push static 0\n"),
			unit("Beta", "push static 0\neq\n"),
		}, sink, Options{})

		Expect(err).NotTo(HaveOccurred())
		Expect(sink.String()).To(ContainSubstring("@Alpha.0\n"))
		Expect(sink.String()).To(ContainSubstring("@Beta.0\n"))
		Expect(stats).To(Equal(Stats{
			Units:     2,
			Commands:  3,
			Fragments: 3,
			Bytes:     len(sink.String()),
			Compares:  1,
		}))
	})

	It("should start with the bootstrap when asked", func() {
		sink := &codegen.BufferSink{}
		opts := Options{}
		opts.Bootstrap = true
		_, err := Translate([]Unit{unit("Sys", "function Sys.init 0\n")}, sink, opts)

		Expect(err).NotTo(HaveOccurred())
		Expect(sink.Fragments()).To(HaveLen(2))
		Expect(sink.Fragments()[0]).To(HavePrefix("@256\n"))
		Expect(sink.Fragments()[1]).To(HavePrefix("(Sys.init)\n"))
	})

	It("should stop at the first invalid command", func() {
		sink := &codegen.BufferSink{}
		stats, err := Translate([]Unit{
			unit("Main", "push constant 1\npop pointer 5\npush constant 2\n"),
			unit("Other", "add\n"),
		}, sink, Options{})

		var verr *vm.ValidationError
		Expect(errors.As(err, &verr)).To(BeTrue())
		Expect(verr.Unit).To(Equal("Main"))
		Expect(verr.Line).To(Equal(2))
		Expect(sink.Fragments()).To(HaveLen(1))
		Expect(stats.Units).To(Equal(0))
	})
})

var _ = Describe("Run", func() {
	var dir string

	BeforeEach(func() {
		dir = tempDir()
	})

	It("should write the output file", func() {
		path := writeFile(dir, "Prog.vm", "push constant 7\npush constant 8\nadd\n")
		p, err := Discover(path)
		Expect(err).NotTo(HaveOccurred())

		var temp string
		stats, err := Run(context.Background(), p, Options{OnTempFile: func(t string) { temp = t }})
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Commands).To(Equal(3))

		out, err := os.ReadFile(p.Output)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(HavePrefix("@7\nD=A\n"))
		Expect(strings.Contains(string(out), "@256")).To(BeFalse())

		Expect(temp).NotTo(BeEmpty())
		_, err = os.Stat(temp)
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("should leave no output when translation fails", func() {
		path := writeFile(dir, "Bad.vm", "push constant 1\npop constant 0\n")
		p, err := Discover(path)
		Expect(err).NotTo(HaveOccurred())

		_, err = Run(context.Background(), p, Options{})
		Expect(err).To(HaveOccurred())
		_, statErr := os.Stat(p.Output)
		Expect(os.IsNotExist(statErr)).To(BeTrue())

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
	})

	It("should keep an existing output when translation fails", func() {
		path := writeFile(dir, "Bad.vm", "goto\n")
		writeFile(dir, "Bad.asm", "previous\n")
		p, err := Discover(path)
		Expect(err).NotTo(HaveOccurred())

		_, err = Run(context.Background(), p, Options{})
		Expect(err).To(HaveOccurred())
		out, err := os.ReadFile(p.Output)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal("previous\n"))
	})

	It("should honour a cancelled context", func() {
		path := writeFile(dir, "Prog.vm", "push constant 1\n")
		p, err := Discover(path)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = Run(ctx, p, Options{})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
