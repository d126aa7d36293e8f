// Package pdf gera o relatório consolidado do estoque em PDF (Maroto v2).
//
// Seções, na ordem: cabeçalho, valor do estoque, vendas mensais e
// taxa de devolução por parceiro.
package pdf

import (
	"context"
	"fmt"
	"slices"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"bookstock/internal/domain"
)

var (
	colorPrimary = &props.Color{Red: 20, Green: 60, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Report reúne os dados já calculados que entram no documento.
type Report struct {
	GeneratedAt  time.Time
	Valuation    decimal.Decimal
	MonthlySales []domain.MonthlySalesRow
	ReturnRates  map[string]domain.ReturnRate
}

// Renderer monta o PDF do relatório.
type Renderer struct {
	author string
}

// NewRenderer cria o renderizador; author aparece nos metadados do arquivo.
func NewRenderer(author string) *Renderer {
	return &Renderer{author: author}
}

// Render gera o documento e devolve seus bytes.
func (r *Renderer) Render(ctx context.Context, rep Report) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Relatório de Estoque", true).
		WithAuthor(r.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep.GeneratedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(valuationRow(rep.Valuation))

	m.AddRows(sectionRow("Vendas mensais"))
	m.AddRows(tableHeaderRow("Mês", "Título", "Quantidade"))
	if len(rep.MonthlySales) == 0 {
		m.AddRows(emptyRow("Nenhuma expedição registrada."))
	}
	for _, s := range rep.MonthlySales {
		m.AddRows(tableRow(s.Month, s.Title, fmt.Sprintf("%d", s.TotalQuantity)))
	}

	m.AddRows(sectionRow("Taxa de devolução por parceiro"))
	m.AddRows(tableHeaderRow("Parceiro", "Expedido / Devolvido", "Taxa (%)"))
	partners := sortedPartners(rep.ReturnRates)
	if len(partners) == 0 {
		m.AddRows(emptyRow("Nenhum parceiro com expedições e devoluções."))
	}
	for _, p := range partners {
		rr := rep.ReturnRates[p]
		m.AddRows(tableRow(p, fmt.Sprintf("%d / %d", rr.Shipped, rr.Returned), rr.RatePercent.StringFixed(2)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(generatedAt time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("RELATÓRIO DE ESTOQUE", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2,
			}),
		),
		col.New(4).Add(
			text.New("Gerado em "+generatedAt.Format(domain.TimestampLayout), props.Text{
				Size: 8, Align: align.Right, Color: colorGray, Top: 4,
			}),
		),
	)
}

func valuationRow(total decimal.Decimal) core.Row {
	return row.New(12).Add(
		col.New(8).Add(text.New("Valor total do estoque:", props.Text{Style: fontstyle.Bold, Size: 10, Top: 3})),
		col.New(4).Add(text.New(total.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 3,
		})),
	)
}

func sectionRow(title string) core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 5}),
	))
}

func tableHeaderRow(a, b, c string) core.Row {
	h := func(label string, size int, al align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: al, Top: 1}))
	}
	return row.New(7).Add(h(a, 3, align.Left), h(b, 6, align.Left), h(c, 3, align.Right))
}

func tableRow(a, b, c string) core.Row {
	return row.New(6).Add(
		col.New(3).Add(text.New(a, props.Text{Size: 8, Top: 1})),
		col.New(6).Add(text.New(b, props.Text{Size: 8, Top: 1})),
		col.New(3).Add(text.New(c, props.Text{Size: 8, Align: align.Right, Top: 1})),
	)
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(text.New(msg, props.Text{Size: 8, Color: colorGray, Top: 1})))
}

func sortedPartners(rates map[string]domain.ReturnRate) []string {
	partners := make([]string, 0, len(rates))
	for p := range rates {
		partners = append(partners, p)
	}
	slices.Sort(partners)
	return partners
}
