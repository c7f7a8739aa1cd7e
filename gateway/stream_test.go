package gateway

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/streamgate/pkg/llm"
	"github.com/papercomputeco/streamgate/pkg/logger"
)

var _ = Describe("pump", func() {
	var (
		g    *Gateway
		meta streamMeta
	)

	BeforeEach(func() {
		var err error
		g, err = New(Config{Model: "test-model"}, &fakeClient{}, &fakeVerifier{}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		meta = streamMeta{route: routeIdea, requestID: "req-1", subject: "user_1"}
	})

	It("writes every event followed by the terminal marker", func() {
		stream := &fakeStream{chunks: []*llm.StreamChunk{textChunk("A"), emptyChunk(), textChunk("B")}}
		var buf bytes.Buffer

		outcome := g.pump(&buf, stream, meta)
		Expect(outcome).To(Equal(outcomeCompleted))
		Expect(buf.String()).To(Equal("data: A\n\ndata: B\n\ndata: [DONE]\n\n"))
		Expect(stream.closed.Load()).To(BeTrue())
	})

	It("writes k events then exactly one error event when the stream faults", func() {
		stream := &fakeStream{
			chunks: []*llm.StreamChunk{textChunk("A"), textChunk("B"), textChunk("C")},
			err:    errors.New("upstream reset"),
		}
		var buf bytes.Buffer

		outcome := g.pump(&buf, stream, meta)
		Expect(outcome).To(Equal(outcomeFaulted))

		out := frames(buf.String())
		Expect(out).To(HaveLen(4))
		Expect(out[:3]).To(Equal([]string{"data: A", "data: B", "data: C"}))
		Expect(out[3]).To(Equal("data: [ERROR]: upstream reset"))
		Expect(buf.String()).NotTo(ContainSubstring("[DONE]"))
		Expect(stream.closed.Load()).To(BeTrue())
	})

	It("emits only the error event when the stream faults before any text", func() {
		stream := &fakeStream{err: errors.New("boom")}
		var buf bytes.Buffer

		Expect(g.pump(&buf, stream, meta)).To(Equal(outcomeFaulted))
		Expect(buf.String()).To(Equal("data: [ERROR]: boom\n\n"))
	})

	It("contains a panic raised by the upstream decoder", func() {
		stream := &fakeStream{chunks: []*llm.StreamChunk{textChunk("A")}, panicMsg: "decoder exploded"}
		var buf bytes.Buffer

		var outcome string
		Expect(func() {
			outcome = g.pump(&buf, stream, meta)
		}).NotTo(Panic())

		Expect(outcome).To(Equal(outcomeFaulted))
		out := frames(buf.String())
		Expect(out).To(HaveLen(2))
		Expect(out[0]).To(Equal("data: A"))
		Expect(out[1]).To(Equal("data: [ERROR]: panic: decoder exploded"))
		Expect(stream.closed.Load()).To(BeTrue())
	})

	It("frames multi-line error details like any other payload", func() {
		stream := &fakeStream{err: errors.New("line one\nline two")}
		var buf bytes.Buffer

		g.pump(&buf, stream, meta)
		Expect(buf.String()).To(Equal("data: [ERROR]: line one\ndata: line two\n\n"))
	})

	It("stops pulling from the upstream once the client is gone", func() {
		stream := &fakeStream{chunks: []*llm.StreamChunk{
			textChunk("A"), textChunk("B"), textChunk("C"), textChunk("D"), textChunk("E"),
		}}
		w := &failingWriter{accept: 1}

		outcome := g.pump(w, stream, meta)
		Expect(outcome).To(Equal(outcomeDisconnected))
		Expect(string(w.data)).To(Equal("data: A\n\n"))
		Expect(stream.Pulled()).To(Equal(2))
		Expect(stream.closed.Load()).To(BeTrue())
	})

	It("does not write an error event after a disconnect", func() {
		stream := &fakeStream{chunks: []*llm.StreamChunk{textChunk("A")}, err: errors.New("late fault")}
		w := &failingWriter{accept: 0}

		Expect(g.pump(w, stream, meta)).To(Equal(outcomeDisconnected))
		Expect(w.data).To(BeEmpty())
		Expect(stream.Pulled()).To(Equal(1))
	})
})

var _ = Describe("client disconnect", func() {
	const total = 2000

	var (
		stream   *fakeStream
		g        *Gateway
		listener net.Listener
	)

	BeforeEach(func() {
		chunks := make([]*llm.StreamChunk, total)
		for i := range chunks {
			chunks[i] = textChunk(fmt.Sprintf("token %d", i))
		}
		stream = &fakeStream{chunks: chunks, delay: 5 * time.Millisecond}

		var err error
		g, err = New(Config{Model: "test-model"}, &fakeClient{stream: stream}, &fakeVerifier{}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		listener, err = net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		go func() {
			defer GinkgoRecover()
			_ = g.RunWithListener(listener)
		}()

		DeferCleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = g.Shutdown(ctx)
		})
	})

	It("stops pulling and closes the upstream when the connection drops", func() {
		conn, err := net.Dial("tcp", listener.Addr().String())
		Expect(err).NotTo(HaveOccurred())

		_, err = fmt.Fprint(conn, "GET /api HTTP/1.1\r\nHost: streamgate.test\r\n\r\n")
		Expect(err).NotTo(HaveOccurred())

		Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadString('\n')
			Expect(err).NotTo(HaveOccurred())
			if strings.HasPrefix(line, "data: token 0") {
				break
			}
		}

		Expect(conn.Close()).To(Succeed())

		Eventually(stream.closed.Load).WithTimeout(5 * time.Second).Should(BeTrue())
		Expect(stream.Pulled()).To(BeNumerically("<", total))

		pulled := stream.Pulled()
		Consistently(stream.Pulled).WithTimeout(100 * time.Millisecond).Should(Equal(pulled))
	})
})
