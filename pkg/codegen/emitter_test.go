package codegen

import (
	"strings"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"hackvm/pkg/vm"
)

func command(unit string, line int, text string) vm.Command {
	cmd, ok, err := vm.Classify(unit, line, text)
	Expect(err).NotTo(HaveOccurred())
	Expect(ok).To(BeTrue())
	return cmd
}

var _ = Describe("Emitter", func() {
	var (
		mockCtrl *gomock.Controller
		sink     *MockSink
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sink = NewMockSink(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should write one fragment per command in order", func() {
		e := NewEmitter(sink, Options{})
		push := command("Main", 1, "push constant 7")
		neg := command("Main", 2, "neg")

		pushFrag, err := Generate(NewState(), push)
		Expect(err).NotTo(HaveOccurred())
		negFrag, err := Generate(NewState(), neg)
		Expect(err).NotTo(HaveOccurred())

		gomock.InOrder(
			sink.EXPECT().WriteFragment(pushFrag).Return(nil),
			sink.EXPECT().WriteFragment(negFrag).Return(nil),
		)

		Expect(e.BeginUnit("Main")).To(Succeed())
		Expect(e.Emit(push)).To(Succeed())
		Expect(e.Emit(neg)).To(Succeed())
		Expect(e.Fragments()).To(Equal(2))
		Expect(e.Bytes()).To(Equal(len(pushFrag) + len(negFrag)))
	})

	It("should write the bootstrap once, before the first unit", func() {
		e := NewEmitter(sink, Options{Bootstrap: true})

		var written []string
		sink.EXPECT().WriteFragment(gomock.Any()).
			DoAndReturn(func(frag string) error {
				written = append(written, frag)
				return nil
			}).Times(3)

		Expect(e.BeginUnit("Main")).To(Succeed())
		Expect(e.Emit(command("Main", 1, "push static 3"))).To(Succeed())
		Expect(e.BeginUnit("Sys")).To(Succeed())
		Expect(e.Bootstrap()).To(Succeed())
		Expect(e.Emit(command("Sys", 1, "pop static 3"))).To(Succeed())

		Expect(written[0]).To(HavePrefix("@256\nD=A\n@SP\nM=D\n"))
		Expect(written[0]).To(ContainSubstring("@Sys.init\n0;JMP\n(Sys.init$ret.0)\n"))
		Expect(written[1]).To(ContainSubstring("@Main.3\n"))
		Expect(written[2]).To(ContainSubstring("@Sys.3\n"))
		Expect(e.State().Bootstrapped()).To(BeTrue())
		Expect(e.State().CallSites(DefaultEntry)).To(Equal(1))
	})

	It("should call a custom entry point", func() {
		e := NewEmitter(sink, Options{Bootstrap: true, Entry: "Main.main"})
		sink.EXPECT().WriteFragment(gomock.Any()).
			DoAndReturn(func(frag string) error {
				Expect(frag).To(ContainSubstring("(Main.main$ret.0)"))
				return nil
			})

		Expect(e.BeginUnit("Main")).To(Succeed())
	})

	It("should not bootstrap unless asked to", func() {
		e := NewEmitter(sink, Options{})
		sink.EXPECT().WriteFragment(gomock.Any()).Times(0)

		Expect(e.BeginUnit("Main")).To(Succeed())
		Expect(e.State().Bootstrapped()).To(BeFalse())
		Expect(e.State().Namespace()).To(Equal("Main"))
	})

	It("should echo commands as comments", func() {
		e := NewEmitter(sink, Options{Comments: true})
		sink.EXPECT().WriteFragment(gomock.Any()).
			DoAndReturn(func(frag string) error {
				Expect(frag).To(HavePrefix("// push constant 1\n@1\n"))
				return nil
			})

		Expect(e.Emit(command("Main", 4, "push constant 1 // one"))).To(Succeed())
	})

	It("should propagate sink failures", func() {
		e := NewEmitter(sink, Options{})
		sink.EXPECT().WriteFragment(gomock.Any()).Return(errors.New("disk full"))

		err := e.Emit(command("Main", 1, "add"))
		Expect(err).To(MatchError(ContainSubstring("write fragment: disk full")))
		Expect(e.Fragments()).To(Equal(0))
	})

	It("should not write anything for an invalid command", func() {
		e := NewEmitter(sink, Options{})
		sink.EXPECT().WriteFragment(gomock.Any()).Times(0)

		err := e.Emit(command("Main", 9, "pop constant 0"))
		var verr *vm.ValidationError
		Expect(errors.As(err, &verr)).To(BeTrue())
		Expect(verr.Line).To(Equal(9))
	})

	It("should keep counters across units", func() {
		buf := &BufferSink{}
		e := NewEmitter(buf, Options{})

		for _, unit := range []string{"A", "B"} {
			Expect(e.BeginUnit(unit)).To(Succeed())
			Expect(e.Emit(command(unit, 1, "eq"))).To(Succeed())
			Expect(e.Emit(command(unit, 2, "call Util.f 0"))).To(Succeed())
		}

		out := buf.String()
		Expect(buf.Fragments()).To(HaveLen(4))
		Expect(strings.Count(out, "(SKIP.0)")).To(Equal(1))
		Expect(strings.Count(out, "(SKIP.1)")).To(Equal(1))
		Expect(out).To(ContainSubstring("(Util.f$ret.0)"))
		Expect(out).To(ContainSubstring("(Util.f$ret.1)"))
	})
})

var _ = Describe("WriterSink", func() {
	It("should append fragments to the writer", func() {
		var b strings.Builder
		s := NewWriterSink(&b)
		Expect(s.WriteFragment("@1\n")).To(Succeed())
		Expect(s.WriteFragment("D=A\n")).To(Succeed())
		Expect(b.String()).To(Equal("@1\nD=A\n"))
	})
})
