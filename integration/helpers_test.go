package integration_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gexec"
)

const (
	expectedToken = "valid-access-token"
	appID         = "wx0123456789"
	ticketPath    = "/cgi-bin/ticket/getticket"
)

var (
	onceBuild  sync.Once
	binaryPath string
)

func buildBinary() error {
	var err error
	onceBuild.Do(func() {
		binaryPath, err = gexec.Build("github.com/kardolus/jssdk/cmd/jssdk")
	})
	return err
}

// ticketServer mimics the remote ticket endpoint and counts the tickets it issues.
type ticketServer struct {
	*httptest.Server
	issued    atomic.Int32
	expiresIn int
}

func newTicketServer(expiresIn int) *ticketServer {
	ts := &ticketServer{expiresIn: expiresIn}
	ts.Server = httptest.NewServer(http.HandlerFunc(ts.getTicket))
	return ts
}

func (ts *ticketServer) getTicket(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet || r.URL.Path != ticketPath {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"errcode":404,"errmsg":"not found"}`)
		return
	}

	if r.URL.Query().Get("access_token") != expectedToken {
		_, _ = fmt.Fprint(w, `{"errcode":40001,"errmsg":"invalid credential"}`)
		return
	}

	if r.URL.Query().Get("type") != "jsapi" {
		_, _ = fmt.Fprint(w, `{"errcode":40097,"errmsg":"invalid args"}`)
		return
	}

	n := ts.issued.Add(1)
	_, _ = fmt.Fprintf(w, `{"errcode":0,"errmsg":"ok","ticket":"ticket-%d","expires_in":%d}`, n, ts.expiresIn)
}

func run(env []string, args ...string) *gexec.Session {
	command := exec.Command(binaryPath, args...)
	command.Env = env

	session, err := gexec.Start(command, nil, nil)
	Expect(err).NotTo(HaveOccurred())
	Eventually(session, 10*time.Second).Should(gexec.Exit())

	return session
}
