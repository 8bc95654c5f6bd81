// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package sc2replay

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danjacques/gosc2replay/protocol/event"
	"github.com/danjacques/gosc2replay/protocol/protocoltest"
	"github.com/danjacques/gosc2replay/protocol/version"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestSC2Replay(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SC2Replay")
}

var _ = Describe("sc2replay", func() {
	var tdir string

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		var err error
		tdir, err = os.MkdirTemp("", "sc2replay_test")
		Expect(err).ToNot(HaveOccurred())

		ts := protocoltest.TrackerStream{Family: version.Modern}
		ts.Add(0, protocoltest.UnitBorn(1, "Marine", 1, 10, 10)).
			Add(10, &event.UnitDone{UnitTagIndex: 1, UnitTagRecycle: 1})
		gs := protocoltest.GameStream{Family: version.Modern}
		gs.Add(5, 1, protocoltest.Select(1)).
			Add(5, 2, &event.CameraUpdate{})

		for name, d := range map[string][]byte{
			"header":  protocoltest.HeaderBytes(80949, 2240),
			"tracker": ts.Bytes(),
			"game":    gs.Bytes(),
		} {
			Expect(os.WriteFile(filepath.Join(tdir, name), d, 0644)).To(Succeed())
		}
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tdir)).To(Succeed())
	})

	pack := func(dest string, extra ...string) {
		args := append([]string{"pack",
			"--header", filepath.Join(tdir, "header"),
			"--tracker", filepath.Join(tdir, "tracker"),
			"--game", filepath.Join(tdir, "game"),
		}, extra...)
		out, err := run(append(args, dest)...)
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("build 80949, 1m 40s of game time"))
	}

	It("packs, inspects and verifies a bundle", func() {
		dest := filepath.Join(tdir, "duel")
		pack(dest, "--compression", "gzip")

		out, err := run("header", dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("base build: 80949"))
		Expect(out).To(ContainSubstring("game loops: 2240 (1m 40s)"))

		out, err = run("verify", dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring(": OK "))
	})

	It("prints merged events as JSON lines", func() {
		dest := filepath.Join(tdir, "duel")
		pack(dest)

		out, err := run("events", dest)
		Expect(err).ToNot(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(out), "\n")
		Expect(lines).To(HaveLen(4))

		var types []string
		for _, line := range lines {
			var l struct {
				Type     string `json:"type"`
				HintType string `json:"hint_type"`
			}
			Expect(json.Unmarshal([]byte(line), &l)).To(Succeed())
			types = append(types, l.Type)
		}
		Expect(types).To(Equal([]string{"UnitBorn", "SelectionDelta", "UnitDone", "CameraUpdate"}))
	})

	It("filters events", func() {
		dest := filepath.Join(tdir, "duel")
		pack(dest)

		out, err := run("events", "--user", "2", "--type", "CameraUpdate,SelectionDelta", dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(strings.Count(out, "\n")).To(Equal(1))
		Expect(out).To(ContainSubstring(`"type":"CameraUpdate"`))
		Expect(out).To(ContainSubstring(`"user_id":2`))
	})

	It("summarizes bundles, and fails on a broken one", func() {
		dest := filepath.Join(tdir, "duel")
		pack(dest)

		out, err := run("stats", "--log-backend", "zerolog", dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring(dest + ": OK"))
		Expect(out).To(ContainSubstring("1 replay(s), 0 failed, 0 partial: 4 events"))

		out, err = run("stats", dest, filepath.Join(tdir, "missing"))
		Expect(err).To(HaveOccurred())
		Expect(out).To(ContainSubstring("missing: FAILED"))
	})

	It("writes metrics", func() {
		dest := filepath.Join(tdir, "duel")
		pack(dest)

		metrics := filepath.Join(tdir, "metrics.prom")
		_, err := run("--metrics-out", metrics, "events", dest)
		Expect(err).ToNot(HaveOccurred())

		d, err := os.ReadFile(metrics)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(d)).To(ContainSubstring("sc2replay_merge_events"))
	})

	It("rejects an unknown log backend", func() {
		_, err := run("--log-backend", "syslog", "header", filepath.Join(tdir, "header"))
		Expect(err).To(MatchError(ContainSubstring("unknown log backend")))
	})
})
