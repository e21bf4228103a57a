package extract

import "testing"

func TestLastPage(t *testing.T) {
	tests := []struct {
		name string
		html string
		want int
	}{
		{
			name: "no pagination",
			html: `<html><body><table class="table"></table></body></html>`,
			want: 1,
		},
		{
			name: "several pages",
			html: `<ul class="pagination">
				<li><a href="?page=1&tipo=8">1</a></li>
				<li><a href="?page=2&tipo=8">2</a></li>
				<li><a href="?tipo=8&page=3">3</a></li>
				<li><a href="?page=2&tipo=8">Próxima</a></li>
			</ul>`,
			want: 3,
		},
		{
			name: "unparseable links",
			html: `<ul class="pagination"><li><a href="#">…</a></li><li><a>x</a></li><li><a href="?homepage=9">y</a></li></ul>`,
			want: 1,
		},
		{
			name: "links outside pagination ignored",
			html: `<a href="?page=40">noise</a><ul class="pagination"><li><a href="/m?page=4">4</a></li></ul>`,
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument(tt.html)
			if err != nil {
				t.Fatal(err)
			}
			if got := LastPage(doc); got != tt.want {
				t.Errorf("LastPage = %d, want %d", got, tt.want)
			}
		})
	}
}
