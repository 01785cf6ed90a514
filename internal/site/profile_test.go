package site

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-automation/internal/models"
)

func mustLookup(t *testing.T, name string) Profile {
	t.Helper()
	p, err := Lookup(name)
	require.NoError(t, err)
	return p
}

func TestIsJobLink(t *testing.T) {
	li := mustLookup(t, "linkedin")
	in := mustLookup(t, "indeed")

	tests := []struct {
		name    string
		profile Profile
		href    string
		want    bool
	}{
		{"linkedin absolute", li, "https://www.linkedin.com/jobs/view/3712345678/?refId=abc", true},
		{"linkedin relative", li, "/jobs/view/3712345678/?trackingId=x", true},
		{"linkedin company page", li, "https://www.linkedin.com/company/acme/", false},
		{"linkedin empty", li, "", false},
		{"indeed click", in, "/rc/clk?jk=a1b2c3&fccid=zz&vjs=3", true},
		{"indeed viewjob", in, "https://www.indeed.com/viewjob?jk=a1b2c3", true},
		{"indeed company", in, "/cmp/Acme", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.IsJobLink(tt.href))
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	li := mustLookup(t, "linkedin")
	in := mustLookup(t, "indeed")

	hrefs := []struct {
		profile Profile
		href    string
	}{
		{li, "https://www.linkedin.com/jobs/view/1/?refId=abc&trackingId=def"},
		{li, "/jobs/view/2?eBP=x#top"},
		{li, "https://www.linkedin.com/jobs/view/3/"},
		{in, "/rc/clk?jk=a1&fccid=2&vjs=3"},
		{in, "https://www.indeed.com/viewjob?jk=b2"},
		{in, "/viewjob?from=serp&jk=c3&vjs=3"},
		{in, "/pagead/clk?mo=r&ad=-6NYlbfkN0Dh&p=1#x"},
	}
	for _, h := range hrefs {
		once := h.profile.Canonicalize(h.href)
		twice := h.profile.Canonicalize(string(once))
		assert.Equal(t, once, twice, h.href)
	}
}

func TestCanonicalizeIgnoresQuerySuffix(t *testing.T) {
	li := mustLookup(t, "linkedin")
	base := "https://www.linkedin.com/jobs/view/3712345678/"
	suffixes := []string{"", "?refId=1", "?refId=2&trackingId=3", "?x=" + strings.Repeat("y", 40)}
	for _, s := range suffixes {
		assert.Equal(t, models.JobLink(base), li.Canonicalize(base+s))
	}

	in := mustLookup(t, "indeed")
	assert.Equal(t,
		in.Canonicalize("/rc/clk?jk=a1&from=serp"),
		in.Canonicalize("https://www.indeed.com/rc/clk?jk=a1&vjs=3"),
	)
	assert.NotEqual(t,
		in.Canonicalize("/rc/clk?jk=a1&from=serp"),
		in.Canonicalize("/rc/clk?jk=b2&from=serp"),
	)
}

func TestCanonicalizeIndeedKeepsPostingKey(t *testing.T) {
	in := mustLookup(t, "indeed")

	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"sponsored postings differ", "/pagead/clk?mo=r&ad=AAA&p=1", "/pagead/clk?mo=r&ad=BBB&p=2", false},
		{"sponsored tracking ignored", "/pagead/clk?mo=r&ad=AAA&p=1", "/pagead/clk?ad=AAA&mo=r&p=7", true},
		{"viewjob key not first", "/viewjob?from=serp&jk=111", "/viewjob?from=serp&jk=222", false},
		{"click and viewjob agree", "/rc/clk?jk=111&fccid=z", "https://www.indeed.com/viewjob?from=serp&jk=111", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := in.Canonicalize(tt.a), in.Canonicalize(tt.b)
			if tt.same {
				assert.Equal(t, a, b)
			} else {
				assert.NotEqual(t, a, b)
			}
			assert.True(t, in.IsJobLink(string(a)), a)
		})
	}

	assert.Equal(t, models.JobLink("https://www.indeed.com/viewjob?jk=111"), in.Canonicalize("/viewjob?from=serp&jk=111"))
	assert.Equal(t, models.JobLink("https://www.indeed.com/pagead/clk?ad=AAA"), in.Canonicalize("/pagead/clk?mo=r&ad=AAA&p=1"))
}

func TestLookup(t *testing.T) {
	_, err := Lookup("monster")
	assert.Error(t, err)

	p, err := Lookup(" LinkedIn ")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stride)
	assert.Equal(t, 40, p.PageCeiling)
	assert.Equal(t, `button[aria-label="Page 7"]`, p.PageControlSelector(7))

	assert.Equal(t, []string{"indeed", "linkedin"}, Names())
}

func TestSearchURL(t *testing.T) {
	li := mustLookup(t, "linkedin")
	u := li.SearchURL("data scientist", "Seattle, WA", "24h")
	assert.Contains(t, u, "keywords=data+scientist")
	assert.Contains(t, u, "f_TPR=r86400")

	in := mustLookup(t, "indeed")
	u = in.SearchURL("go developer", "Remote", "any")
	assert.Contains(t, u, "q=go+developer")
	assert.NotContains(t, u, "fromage")

	assert.Equal(t, `a[aria-label="4"], a[data-testid="pagination-page-4"]`, in.PageControlSelector(4))
}
