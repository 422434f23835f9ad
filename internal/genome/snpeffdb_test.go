package genome

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahlab/labctl/internal/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stageBuildInputs(t *testing.T) (dir string, req BuildRequest) {
	t.Helper()
	dir = t.TempDir()

	snpeffHome := filepath.Join(dir, "snpEff")
	require.NoError(t, os.MkdirAll(snpeffHome, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(snpeffHome, "snpEff.config"),
		[]byte("# snpEff config\ndata.dir = ./data/\n"), 0o644))

	fasta := filepath.Join(dir, "genome.fa")
	require.NoError(t, os.WriteFile(fasta, []byte(">NC_TEST.1 test virus\natgaaatttTAAatgcatTAA\n"), 0o644))

	tsv := filepath.Join(dir, "review.tsv")
	features := []Feature{
		{Action: ActionKeep, SeqID: "NC_TEST.1", Source: "GenBank", Type: "CDS",
			Start: 1, End: 12, Strand: "+", GeneName: "NS1", Product: "nonstructural protein 1"},
		{Action: ActionDelete, SeqID: "NC_TEST.1", Source: "GenBank", Type: "CDS",
			Start: 13, End: 21, Strand: "-", Product: "curator dropped this"},
	}
	require.NoError(t, WriteTSVFile(tsv, features))

	req = BuildRequest{
		GenomeID:  "NC_TEST.1",
		FastaPath: fasta,
		TSVPath:   tsv,
		Invocation: registry.Invocation{
			JavaHome:   filepath.Join(dir, "jdk"),
			SnpEffHome: snpeffHome,
			Memory:     "4g",
		},
		DryRun: true,
	}
	return dir, req
}

func TestAddGenomeStagesDataLayout(t *testing.T) {
	_, req := stageBuildInputs(t)

	res, err := AddGenome(context.Background(), testLogger(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CDSCount)
	assert.True(t, res.ConfigLine)

	dataDir := filepath.Join(req.Invocation.SnpEffHome, "data", "NC_TEST.1")
	assert.Equal(t, dataDir, res.DataDir)
	for _, name := range []string{"sequences.fa", "genes.gff", "cds.fa", "protein.fa"} {
		assert.FileExists(t, filepath.Join(dataDir, name))
	}

	seqs, err := os.ReadFile(filepath.Join(dataDir, "sequences.fa"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(seqs), ">NC_TEST.1\n"))

	cds, err := os.ReadFile(filepath.Join(dataDir, "cds.fa"))
	require.NoError(t, err)
	assert.Contains(t, string(cds), ">TRANSCRIPT_NS1")

	config, err := os.ReadFile(filepath.Join(req.Invocation.SnpEffHome, "snpEff.config"))
	require.NoError(t, err)
	assert.Contains(t, string(config), "NC_TEST.1.genome : NC_TEST.1")

	assert.Equal(t, []string{
		filepath.Join(req.Invocation.JavaHome, "bin", "java"),
		"-Xmx4g", "-jar",
		filepath.Join(req.Invocation.SnpEffHome, "snpEff.jar"),
		"build", "-gff3", "-v", "NC_TEST.1",
	}, res.BuildArgs)
}

func TestAddGenomeRefusesExistingDataDirWithoutForce(t *testing.T) {
	_, req := stageBuildInputs(t)
	require.NoError(t, os.MkdirAll(filepath.Join(req.Invocation.SnpEffHome, "data", "NC_TEST.1"), 0o755))

	_, err := AddGenome(context.Background(), testLogger(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	req.Force = true
	_, err = AddGenome(context.Background(), testLogger(), req)
	require.NoError(t, err)
}

func TestEnsureConfigEntryIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snpEff.config")
	require.NoError(t, os.WriteFile(path, []byte("data.dir = ./data/\n"), 0o644))

	added, err := ensureConfigEntry(path, "NC_X.1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = ensureConfigEntry(path, "NC_X.1")
	require.NoError(t, err)
	assert.False(t, added)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "NC_X.1.genome"))
}

func TestFetchWritesEFetchResponse(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, ">NC_TEST.1 test\nACGT\n")
	}))
	defer srv.Close()

	// Point the fetch at the test server through its client transport.
	client := srv.Client()
	client.Transport = rewriteHost{base: srv.URL, inner: client.Transport}

	dest := filepath.Join(t.TempDir(), "genome.fa")
	require.NoError(t, Fetch(context.Background(), client, "NC_TEST.1", FormatFasta, dest))

	assert.Contains(t, gotQuery, "db=nuccore")
	assert.Contains(t, gotQuery, "id=NC_TEST.1")
	assert.Contains(t, gotQuery, "rettype=fasta")

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ACGT")
}

func TestFetchRejectsUnknownFormat(t *testing.T) {
	err := Fetch(context.Background(), http.DefaultClient, "NC_1", "xml", "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fetch format")
}

// rewriteHost redirects every request to a test server while keeping the
// original path and query.
type rewriteHost struct {
	base  string
	inner http.RoundTripper
}

func (rt rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	redirected := rt.base + req.URL.Path + "?" + req.URL.RawQuery
	clone := req.Clone(req.Context())
	u, err := clone.URL.Parse(redirected)
	if err != nil {
		return nil, err
	}
	clone.URL = u
	clone.Host = u.Host
	return rt.inner.RoundTrip(clone)
}
