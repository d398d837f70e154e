package sim

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type posLogger struct {
	LogHookBase
}

func (h *posLogger) Func(ctx HookCtx) {
	h.Printf("%s at %s", ctx.Domain.Name(), ctx.Pos.Name)
}

var _ = Describe("LogHookBase", func() {
	It("should let a log hook write to its logger", func() {
		buf := new(bytes.Buffer)
		domain := namedHookable{HookableBase: NewHookableBase()}

		var hook LogHook = &posLogger{
			LogHookBase: LogHookBase{Logger: log.New(buf, "", 0)},
		}
		domain.AcceptHook(hook)

		domain.InvokeHook(HookCtx{Domain: domain, Pos: &HookPos{Name: "Pos"}})

		Expect(buf.String()).To(Equal("Domain at Pos\n"))
	})
})
