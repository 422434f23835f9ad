package genome

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// EFetchBase is the NCBI E-utilities efetch endpoint.
const EFetchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

// Formats accepted by Fetch.
const (
	FormatFasta   = "fasta"
	FormatGenBank = "gb"
	FormatGFF     = "gff3"
)

// Fetch downloads one nuccore record from NCBI in the given format and
// writes it to dest. A single attempt: a failed or interrupted transfer
// surfaces as an error for the operator to retry.
func Fetch(ctx context.Context, client *http.Client, accession, format, dest string) error {
	rettype, retmode := "fasta", "text"
	switch format {
	case FormatFasta:
	case FormatGenBank:
		rettype = "gb"
	case FormatGFF:
		rettype = "gff3"
	default:
		return errors.Errorf("unknown fetch format %q", format)
	}

	query := url.Values{
		"db":      {"nuccore"},
		"id":      {accession},
		"rettype": {rettype},
		"retmode": {retmode},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, EFetchBase+"?"+query.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "building efetch request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "fetching %s from NCBI", accession)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("NCBI efetch for %s returned %s", accession, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*")
	if err != nil {
		return errors.Wrap(err, "creating download file")
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "downloading %s", accession)
	}
	if n == 0 {
		return errors.Errorf("NCBI efetch for %s returned an empty body", accession)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), dest), "moving download into place")
}
