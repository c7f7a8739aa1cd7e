package clientcmder_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	clientcmder "github.com/papercomputeco/streamgate/cmd/streamgate/client"
	"github.com/papercomputeco/streamgate/pkg/streamclient"
)

var _ = Describe("client commands", func() {
	var (
		server   *httptest.Server
		stdout   bytes.Buffer
		stderr   bytes.Buffer
		received streamclient.Visit
		auth     string
	)

	BeforeEach(func() {
		stdout.Reset()
		stderr.Reset()
		received = streamclient.Visit{}
		auth = ""

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/consultation" {
				auth = r.Header.Get("Authorization")
				_ = json.NewDecoder(r.Body).Decode(&received)
			}
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "data: # Idea\ndata: Agents\n\ndata: [DONE]\n\n")
		}))
		DeferCleanup(server.Close)
	})

	Describe("idea", func() {
		It("prints the text as it arrives", func() {
			cmd := clientcmder.NewIdeaCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs([]string{"--target", server.URL})

			Expect(cmd.Execute()).To(Succeed())
			Expect(stdout.String()).To(Equal("# Idea\nAgents\n"))
		})

		It("prints the raw stream with --raw", func() {
			cmd := clientcmder.NewIdeaCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs([]string{"--target", server.URL, "--raw"})

			Expect(cmd.Execute()).To(Succeed())
			Expect(stdout.String()).To(Equal("data: # Idea\ndata: Agents\n\ndata: [DONE]\n\n"))
		})

		It("rejects a non-http target", func() {
			cmd := clientcmder.NewIdeaCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs([]string{"--target", "localhost:8000"})

			Expect(cmd.Execute()).To(HaveOccurred())
		})
	})

	Describe("consult", func() {
		It("sends the visit with the token", func() {
			cmd := clientcmder.NewConsultCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs([]string{
				"--target", server.URL,
				"--token", "tok",
				"--patient", "Jane Doe",
				"--date", "2026-03-14",
				"--notes", "Mild fever.",
			})

			Expect(cmd.Execute()).To(Succeed())
			Expect(auth).To(Equal("Bearer tok"))
			Expect(received).To(Equal(streamclient.Visit{
				PatientName: "Jane Doe",
				DateOfVisit: "2026-03-14",
				Notes:       "Mild fever.",
			}))
		})

		It("reads notes from stdin", func() {
			cmd := clientcmder.NewConsultCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetIn(strings.NewReader("Cough for a week.\n"))
			cmd.SetArgs([]string{"--target", server.URL, "--token", "tok", "--patient", "Jane Doe", "--notes-file", "-"})

			Expect(cmd.Execute()).To(Succeed())
			Expect(received.Notes).To(Equal("Cough for a week.\n"))
		})

		It("reads notes from a file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "visit.txt")
			Expect(os.WriteFile(path, []byte("Sprained ankle."), 0o600)).To(Succeed())

			cmd := clientcmder.NewConsultCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs([]string{"--target", server.URL, "--token", "tok", "--patient", "Jane Doe", "--notes-file", path})

			Expect(cmd.Execute()).To(Succeed())
			Expect(received.Notes).To(Equal("Sprained ankle."))
		})

		It("requires a patient name", func() {
			cmd := clientcmder.NewConsultCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs([]string{"--target", server.URL, "--notes", "x"})

			Expect(cmd.Execute()).To(MatchError(ContainSubstring("--patient is required")))
		})

		It("rejects --notes together with --notes-file", func() {
			cmd := clientcmder.NewConsultCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs([]string{"--target", server.URL, "--patient", "Jane Doe", "--notes", "x", "--notes-file", "-"})

			Expect(cmd.Execute()).To(MatchError(ContainSubstring("mutually exclusive")))
		})
	})
})
