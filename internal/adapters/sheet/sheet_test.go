package sheet_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/debtscore/internal/adapters/sheet"
	"github.com/okian/debtscore/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReadCSV(t *testing.T) {
	ctx := context.Background()

	Convey("Given a semicolon separated file with a BOM and blank rows", t, func() {
		path := filepath.Join(t.TempDir(), "pagos.csv")
		body := "\ufeffDeudor;Valor Pago;Fecha\n00123;1.500,50;2024-01-02\n;;\n456;;\n"
		So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)

		tbl, err := sheet.Read(ctx, path)
		So(err, ShouldBeNil)

		Convey("Then the header and rows are read as text with nil blanks", func() {
			So(tbl.Name, ShouldEqual, "pagos")
			So(tbl.Columns, ShouldResemble, []string{"Deudor", "Valor Pago", "Fecha"})
			So(tbl.Len(), ShouldEqual, 2)
			So(tbl.Cell(0, 0), ShouldEqual, "00123")
			So(tbl.Cell(1, 1), ShouldBeNil)
		})
	})

	Convey("Given an unknown extension", t, func() {
		_, err := sheet.Read(ctx, "datos.ods")

		Convey("Then the format is rejected", func() {
			So(errors.Is(err, sheet.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := sheet.Read(ctx, filepath.Join(t.TempDir(), "nope.csv"))

		Convey("Then a read error is returned", func() {
			So(errors.Is(err, sheet.ErrRead), ShouldBeTrue)
		})
	})

	Convey("Given an empty file", t, func() {
		path := filepath.Join(t.TempDir(), "vacio.csv")
		So(os.WriteFile(path, nil, 0o600), ShouldBeNil)
		_, err := sheet.Read(ctx, path)

		Convey("Then there is no header", func() {
			So(errors.Is(err, sheet.ErrNoHeader), ShouldBeTrue)
		})
	})
}

func sample() *table.Table {
	tbl := table.New("consolidado", []string{"deudor", "score", "fecha", "conteo", "nota"})
	tbl.Append("123", 81.25, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), int64(2), nil)
	tbl.Append("456", 10.0, nil, int64(0), "sin, datos")
	return tbl
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	Convey("Given a consolidated table", t, func() {
		dir := t.TempDir()

		Convey("When written as csv and read back", func() {
			path := filepath.Join(dir, "out.csv")
			So(sheet.Write(ctx, path, sample()), ShouldBeNil)
			back, err := sheet.Read(ctx, path)
			So(err, ShouldBeNil)

			Convey("Then values survive as text", func() {
				So(back.Columns, ShouldResemble, sample().Columns)
				So(back.Cell(0, 1), ShouldEqual, "81.25")
				So(back.Cell(0, 2), ShouldEqual, "2024-03-01")
				So(back.Cell(0, 4), ShouldBeNil)
				So(back.Cell(1, 4), ShouldEqual, "sin, datos")
			})
		})

		Convey("When written as xlsx and read back", func() {
			path := filepath.Join(dir, "out.xlsx")
			So(sheet.Write(ctx, path, sample()), ShouldBeNil)
			back, err := sheet.Read(ctx, path)
			So(err, ShouldBeNil)

			Convey("Then cells coerce to their original values", func() {
				So(back.Columns, ShouldResemble, sample().Columns)
				So(back.Len(), ShouldEqual, 2)
				id, _ := table.Text(back.Cell(0, 0))
				So(id, ShouldEqual, "123")
				score, ok := table.Number(back.Cell(0, 1))
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 81.25)
				d, ok := table.Date(back.Cell(0, 2))
				So(ok, ShouldBeTrue)
				So(d, ShouldEqual, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
				So(back.Cell(1, 2), ShouldBeNil)
			})
		})
	})
}
