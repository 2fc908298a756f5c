package services

import (
	"context"
	"time"

	"invoicing-backend/models"
	"invoicing-backend/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

var avatarPalette = []string{
	"#3f51b5", "#f44336", "#4caf50", "#ff9800", "#9c27b0",
	"#2196f3", "#009688", "#ffeb3b", "#795548", "#607d8b",
}

type Dashboard struct {
	TotalRevenue        string           `json:"totalRevenue"`
	InvoiceCount        int64            `json:"invoiceCount"`
	ActiveArticlesCount int64            `json:"activeArticlesCount"`
	RevenueChange       string           `json:"revenueChange"`
	TopClients          []TopClient      `json:"topClients"`
	BestSales           []SaleSummary    `json:"bestSales"`
	LatestSales         []SaleSummary    `json:"latestSales"`
	RecentInvoices      []InvoiceSummary `json:"recentInvoices"`
	TopProducts         []TopProduct     `json:"topProducts"`
}

type TopClient struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	TotalSpent  string `json:"totalSpent"`
	OrdersCount int64  `json:"ordersCount"`
	AvatarColor string `json:"avatarColor"`
}

type SaleSummary struct {
	ID     string    `json:"id"`
	Client string    `json:"client"`
	Amount string    `json:"amount"`
	Items  int       `json:"items"`
	Date   time.Time `json:"date"`
}

type InvoiceSummary struct {
	ID     string `json:"id"`
	Client string `json:"client"`
	Amount string `json:"amount"`
	Status string `json:"status"`
}

// TopProduct.Progress is the article's share of all units sold by every
// user, not only the requesting one.
type TopProduct struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Sales    int64   `json:"sales"`
	Progress float64 `json:"progress"`
}

// DashboardService computes per-user metrics on every call
type DashboardService struct {
	db      *gorm.DB
	now     func() time.Time
	printer *message.Printer
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{
		db:      db,
		now:     func() time.Time { return time.Now().UTC() },
		printer: message.NewPrinter(language.English),
	}
}

// AvatarColor maps a client id onto the fixed palette
func AvatarColor(clientID uint) string {
	return avatarPalette[clientID%uint(len(avatarPalette))]
}

// RevenueChange is the month-over-month change in percent, 0 when there
// was no revenue in the previous month.
func RevenueChange(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}
	change, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Float64()
	return change
}

func (s *DashboardService) Overview(ctx context.Context, userID uint) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	sales := func() *gorm.DB { return db.Model(&models.Sale{}).Where("user_id = ?", userID) }

	totalRevenue, err := sum(sales(), "total")
	if err != nil {
		return nil, err
	}

	out := &Dashboard{TotalRevenue: s.money(totalRevenue)}
	if err := db.Model(&models.Invoice{}).Where("user_id = ?", userID).Count(&out.InvoiceCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Article{}).
		Where("user_id = ? AND status = ?", userID, models.ArticleActive).
		Count(&out.ActiveArticlesCount).Error; err != nil {
		return nil, err
	}

	now := utils.BeginningOfDay(s.now())
	curStart, curEnd := utils.MonthRange(now)
	prevStart, _ := utils.MonthRange(curStart.AddDate(0, -1, 0))

	current, err := sum(sales().Where("date >= ? AND date < ?", curStart, curEnd), "total")
	if err != nil {
		return nil, err
	}
	previous, err := sum(sales().Where("date >= ? AND date < ?", prevStart, curStart), "total")
	if err != nil {
		return nil, err
	}
	out.RevenueChange = s.printer.Sprintf("%.1f", RevenueChange(current, previous))

	if out.TopClients, err = s.topClients(db, userID); err != nil {
		return nil, err
	}
	if out.BestSales, err = s.saleSummaries(db, userID, "total DESC, id DESC"); err != nil {
		return nil, err
	}
	if out.LatestSales, err = s.saleSummaries(db, userID, "date DESC, id DESC"); err != nil {
		return nil, err
	}
	if out.RecentInvoices, err = s.recentInvoices(db, userID); err != nil {
		return nil, err
	}
	if out.TopProducts, err = s.topProducts(db, userID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) topClients(db *gorm.DB, userID uint) ([]TopClient, error) {
	var rows []struct {
		ID          uint
		Name        string
		TotalSpent  decimal.Decimal
		OrdersCount int64
	}
	err := db.Table("clients").
		Select("clients.id, clients.name, SUM(sales.total) AS total_spent, COUNT(sales.id) AS orders_count").
		Joins("JOIN sales ON sales.client_id = clients.id").
		Where("clients.user_id = ?", userID).
		Group("clients.id, clients.name").
		Order("total_spent DESC").
		Limit(5).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	clients := make([]TopClient, 0, len(rows))
	for _, r := range rows {
		clients = append(clients, TopClient{
			ID:          r.ID,
			Name:        r.Name,
			TotalSpent:  s.money(r.TotalSpent),
			OrdersCount: r.OrdersCount,
			AvatarColor: AvatarColor(r.ID),
		})
	}
	return clients, nil
}

func (s *DashboardService) saleSummaries(db *gorm.DB, userID uint, order string) ([]SaleSummary, error) {
	var sales []models.Sale
	err := db.Preload("Client").Preload("Items").
		Where("user_id = ?", userID).
		Order(order).
		Limit(4).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]SaleSummary, 0, len(sales))
	for _, sale := range sales {
		summaries = append(summaries, SaleSummary{
			ID:     sale.SaleNumber,
			Client: clientName(sale.Client),
			Amount: s.money(sale.Total),
			Items:  len(sale.Items),
			Date:   sale.Date,
		})
	}
	return summaries, nil
}

func (s *DashboardService) recentInvoices(db *gorm.DB, userID uint) ([]InvoiceSummary, error) {
	var invoices []models.Invoice
	err := db.Preload("Client").
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(5).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]InvoiceSummary, 0, len(invoices))
	for _, inv := range invoices {
		summaries = append(summaries, InvoiceSummary{
			ID:     inv.InvoiceNumber,
			Client: clientName(inv.Client),
			Amount: s.money(inv.Amount),
			Status: inv.Status,
		})
	}
	return summaries, nil
}

func (s *DashboardService) topProducts(db *gorm.DB, userID uint) ([]TopProduct, error) {
	products := make([]TopProduct, 0, 5)
	err := db.Table("articles").
		Select("articles.id, articles.name, SUM(sale_items.quantity) AS sales, " +
			"SUM(sale_items.quantity) * 100.0 / (SELECT SUM(quantity) FROM sale_items) AS progress").
		Joins("JOIN sale_items ON sale_items.article_id = articles.id").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("articles.user_id = ?", userID).
		Group("articles.id, articles.name").
		Order("sales DESC").
		Limit(5).
		Scan(&products).Error
	return products, err
}

// money formats like "1,234.50"
func (s *DashboardService) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return s.printer.Sprintf("%.2f", f)
}

func sum(q *gorm.DB, column string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.Select("COALESCE(SUM(" + column + "), 0)").Row().Scan(&total)
	return total, err
}

func clientName(c *models.Client) string {
	if c == nil {
		return ""
	}
	return c.Name
}
