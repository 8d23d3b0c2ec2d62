package services

import (
	"context"
	"fmt"
	"time"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/resources"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	darkGray   = color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray = color.Color{Red: 121, Green: 119, Blue: 109}
)

// InvoiceLine is one priced row of an invoice.
type InvoiceLine struct {
	Description string
	Quantity    float64
	Price       float64
}

func (l InvoiceLine) Total() float64 { return l.Quantity * l.Price }

// Invoice is the data rendered into the PDF, resolved from an order and the
// shipping and product records it references.
type Invoice struct {
	OrderNo       string
	Date          time.Time
	Status        string
	PaymentMethod string
	BillTo        []string
	Lines         []InvoiceLine
	Total         float64
}

// InvoiceService renders order invoices.
type InvoiceService struct {
	store store.Store
	log   *logger.Logger
}

func NewInvoiceService(st store.Store, log *logger.Logger) *InvoiceService {
	return &InvoiceService{store: st, log: log.Named("invoice")}
}

// Build loads an order by id and resolves everything the invoice shows.
func (s *InvoiceService) Build(ctx context.Context, id string) (*Invoice, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.store.Collection(resources.Order).FindOne(ctx, store.Filter{models.FieldID: oid})
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		OrderNo:       stringField(order, "orderNo"),
		Status:        stringField(order, "status"),
		PaymentMethod: stringField(order, "paymentMethod"),
	}
	if t, ok := order[models.FieldCreatedAt].(time.Time); ok {
		inv.Date = t
	} else if dt, ok := order[models.FieldCreatedAt].(primitive.DateTime); ok {
		inv.Date = dt.Time()
	}

	if shippingID, ok := order["shippingId"].(primitive.ObjectID); ok {
		addr, err := s.store.Collection(resources.Shipping).FindOne(ctx, store.Filter{models.FieldID: shippingID})
		switch {
		case err == nil:
			inv.BillTo = lo.Compact([]string{
				stringField(addr, "fullName"),
				stringField(addr, "addressLine1"),
				stringField(addr, "addressLine2"),
				stringField(addr, "pincode"),
				stringField(addr, "phone"),
			})
		case !ierr.IsNotFound(err):
			return nil, err
		}
	}

	items, _ := asItems(order["items"])
	names, err := s.productNames(ctx, items)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		line := InvoiceLine{
			Quantity: numberField(item, "quantity"),
			Price:    numberField(item, "price"),
		}
		if pid, ok := item["productId"].(primitive.ObjectID); ok {
			line.Description = names[pid]
			if line.Description == "" {
				line.Description = pid.Hex()
			}
		}
		inv.Lines = append(inv.Lines, line)
	}

	inv.Total = numberField(order, "totalAmount")
	if _, ok := order["totalAmount"]; !ok {
		inv.Total = lo.SumBy(inv.Lines, func(l InvoiceLine) float64 { return l.Total() })
	}
	return inv, nil
}

// Render produces the PDF bytes for inv.
func (s *InvoiceService) Render(inv *Invoice) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 20, 20)

	m.Row(15, func() {
		m.Col(12, func() {
			m.Text("INVOICE", props.Text{Size: 24, Style: consts.Bold, Color: darkGray})
		})
	})
	m.Row(10, func() {
		m.Col(12, func() {
			m.Text("MODEVA STORE", props.Text{Size: 16, Style: consts.Bold, Color: darkGray})
		})
	})
	m.Row(8, func() {})

	m.Row(5, func() {
		labelCol(m, 6, "BILL TO", consts.Left)
		labelCol(m, 6, "INVOICE DETAILS", consts.Right)
	})
	details := []string{fmt.Sprintf("Invoice #%s", inv.OrderNo)}
	if !inv.Date.IsZero() {
		details = append(details, "Date: "+inv.Date.Format("Jan 02, 2006"))
	}
	if inv.Status != "" {
		details = append(details, "Status: "+inv.Status)
	}
	if inv.PaymentMethod != "" {
		details = append(details, "Payment: "+inv.PaymentMethod)
	}
	for i := 0; i < max(len(inv.BillTo), len(details)); i++ {
		left, right := "", ""
		if i < len(inv.BillTo) {
			left = inv.BillTo[i]
		}
		if i < len(details) {
			right = details[i]
		}
		m.Row(5, func() {
			valueCol(m, 6, left, consts.Left)
			valueCol(m, 6, right, consts.Right)
		})
	}
	m.Row(8, func() {})

	m.Row(6, func() {
		labelCol(m, 6, "Description", consts.Left)
		labelCol(m, 2, "Qty", consts.Right)
		labelCol(m, 2, "Price", consts.Right)
		labelCol(m, 2, "Total", consts.Right)
	})
	for _, line := range inv.Lines {
		m.Row(6, func() {
			valueCol(m, 6, line.Description, consts.Left)
			valueCol(m, 2, fmt.Sprintf("%g", line.Quantity), consts.Right)
			valueCol(m, 2, fmt.Sprintf("%.2f", line.Price), consts.Right)
			valueCol(m, 2, fmt.Sprintf("%.2f", line.Total()), consts.Right)
		})
	}
	m.Row(8, func() {})

	m.Row(8, func() {
		m.Col(8, func() {})
		m.Col(2, func() {
			m.Text("Total", props.Text{Size: 12, Style: consts.Bold, Color: darkGray, Align: consts.Right})
		})
		m.Col(2, func() {
			m.Text(fmt.Sprintf("%.2f", inv.Total), props.Text{Size: 12, Style: consts.Bold, Color: darkGray, Align: consts.Right})
		})
	})
	m.Row(12, func() {})
	m.Row(5, func() {
		m.Col(12, func() {
			m.Text("Thank you for your business!", props.Text{Size: 8, Style: consts.Bold, Color: darkGray})
		})
	})

	buf, err := m.Output()
	if err != nil {
		s.log.Errorw("failed to generate PDF", "order", inv.OrderNo, "error", err)
		return nil, ierr.Mark(err, ierr.ErrSystem)
	}
	return buf.Bytes(), nil
}

func labelCol(m pdf.Maroto, width uint, text string, align consts.Align) {
	m.Col(width, func() {
		m.Text(text, props.Text{Size: 8, Style: consts.Bold, Color: darkGray, Align: align})
	})
}

func valueCol(m pdf.Maroto, width uint, text string, align consts.Align) {
	m.Col(width, func() {
		m.Text(text, props.Text{Size: 9, Color: mediumGray, Align: align})
	})
}

func (s *InvoiceService) productNames(ctx context.Context, items []map[string]any) (map[primitive.ObjectID]string, error) {
	ids := lo.Uniq(lo.FilterMap(items, func(item map[string]any, _ int) (primitive.ObjectID, bool) {
		id, ok := item["productId"].(primitive.ObjectID)
		return id, ok
	}))
	if len(ids) == 0 {
		return map[primitive.ObjectID]string{}, nil
	}
	products, err := s.store.Collection(resources.Product).Find(ctx, idFilter(ids), &store.FindOptions{Select: []string{"name"}})
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]string, len(products))
	for _, p := range products {
		if id, ok := p.ID(); ok {
			out[id] = stringField(p, "name")
		}
	}
	return out, nil
}

func asItems(v any) ([]map[string]any, bool) {
	var raw []any
	switch t := v.(type) {
	case []any:
		raw = t
	case primitive.A:
		raw = t
	default:
		return nil, false
	}
	return lo.FilterMap(raw, func(item any, _ int) (map[string]any, bool) {
		switch m := item.(type) {
		case map[string]any:
			return m, true
		case primitive.M:
			return m, true
		case models.Record:
			return m, true
		}
		return nil, false
	}), true
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func numberField(doc map[string]any, key string) float64 {
	switch n := doc[key].(type) {
	case float64:
		return n
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}
