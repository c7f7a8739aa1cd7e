package transport_test

import (
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/streamgate/pkg/llm/provider/transport"
)

var _ = Describe("NewHTTPClient", func() {
	It("applies the configured timeout", func() {
		client, err := transport.NewHTTPClient(transport.Options{Timeout: 3 * time.Second})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Timeout).To(Equal(3 * time.Second))
	})

	It("fails when the CA bundle does not exist", func() {
		_, err := transport.NewHTTPClient(transport.Options{CABundle: filepath.Join(GinkgoT().TempDir(), "missing.pem")})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("reading CA bundle"))
	})

	It("fails when the CA bundle has no certificates", func() {
		path := filepath.Join(GinkgoT().TempDir(), "empty.pem")
		Expect(os.WriteFile(path, []byte("not a certificate"), 0o600)).To(Succeed())

		_, err := transport.NewHTTPClient(transport.Options{CABundle: path})
		Expect(err).To(MatchError(ContainSubstring("no PEM certificates")))
	})

	It("trusts certificates from the CA bundle", func() {
		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}))
		defer server.Close()

		path := filepath.Join(GinkgoT().TempDir(), "ca.pem")
		block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw})
		Expect(os.WriteFile(path, block, 0o600)).To(Succeed())

		client, err := transport.NewHTTPClient(transport.Options{CABundle: path})
		Expect(err).NotTo(HaveOccurred())

		resp, err := client.Get(server.URL)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("ok"))
	})
})
