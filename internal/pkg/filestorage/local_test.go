package filestorage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	ls, err := NewLocalStorage(t.TempDir())
	g.Expect(err).NotTo(HaveOccurred())

	p, err := ls.Resolve("school.json")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p).To(Equal(filepath.Join(ls.BasePath(), "school.json")))

	p, err = ls.Resolve("exports/./students.csv")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p).To(Equal(filepath.Join(ls.BasePath(), "exports", "students.csv")))

	for _, bad := range []string{"../x.json", "a/../../x.json", "/etc/passwd", "..", ".", "  "} {
		_, err := ls.Resolve(bad)
		g.Expect(err).To(HaveOccurred(), bad)
	}
	_, err = ls.Resolve("../escape")
	g.Expect(err).To(MatchError(ErrOutsideRoot))
}

func TestCreate_ReplacesAtomically(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	ls, err := NewLocalStorage(t.TempDir())
	g.Expect(err).NotTo(HaveOccurred())

	path, err := ls.Create("data.json", func(w io.Writer) error {
		_, err := io.WriteString(w, "first")
		return err
	})
	g.Expect(err).NotTo(HaveOccurred())

	boom := errors.New("boom")
	_, err = ls.Create("data.json", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	g.Expect(err).To(MatchError(boom))

	content, err := os.ReadFile(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(content)).To(Equal("first"))

	entries, err := os.ReadDir(ls.BasePath())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(entries).To(HaveLen(1), "temp file must be cleaned up")

	info, err := ls.Stat("data.json")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(info.FileSize).To(BeEquivalentTo(5))
}

func TestDeleteFile_IsIdempotent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	ls, err := NewLocalStorage(t.TempDir())
	g.Expect(err).NotTo(HaveOccurred())

	_, err = ls.Create("gone.csv", func(io.Writer) error { return nil })
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ls.DeleteFile("gone.csv")).To(Succeed())
	g.Expect(ls.DeleteFile("gone.csv")).To(Succeed())

	_, err = ls.Open("gone.csv")
	g.Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
}

func TestList(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	ls, err := NewLocalStorage(t.TempDir())
	g.Expect(err).NotTo(HaveOccurred())

	for _, name := range []string{"school.json", "exports/students.csv", "exports/courses.csv"} {
		_, err := ls.Create(name, func(w io.Writer) error {
			_, err := io.WriteString(w, name)
			return err
		})
		g.Expect(err).NotTo(HaveOccurred())
	}
	g.Expect(os.WriteFile(filepath.Join(ls.BasePath(), ".school.json.tmp"), []byte("x"), 0o600)).To(Succeed())

	files, err := ls.List()
	g.Expect(err).NotTo(HaveOccurred())
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	g.Expect(names).To(Equal([]string{"exports/courses.csv", "exports/students.csv", "school.json"}))
	g.Expect(files[2].FileSize).To(BeEquivalentTo(len("school.json")))
}

func TestStat_RejectsDirectories(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	ls, err := NewLocalStorage(t.TempDir())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(os.Mkdir(filepath.Join(ls.BasePath(), "exports"), 0o755)).To(Succeed())

	_, err = ls.Stat("exports")
	g.Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
}
