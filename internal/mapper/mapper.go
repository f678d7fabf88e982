package mapper

import (
	"github.com/meera-jewels/retail-api/internal/domain"
)

// ToLeadDTO converts Lead to LeadDTO. The NextStage suggestion is filled in
// by the service layer, which owns the transition table.
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	dto := domain.LeadDTO{
		ID:            lead.ID,
		CustomerName:  lead.CustomerName,
		CustomerPhone: lead.CustomerPhone,
		CustomerEmail: lead.CustomerEmail,
		ProductID:     lead.ProductID,
		Interest:      lead.Interest,
		Amount:        lead.Amount,
		Stage:         lead.Stage,
		Floor:         lead.Floor,
		AssignedTo:    lead.AssignedTo,
		Notes:         lead.Notes,
		VisitedDate:   lead.VisitedDate.Format("2006-01-02"),
		CreatedAt:     lead.CreatedAt.Format("2006-01-02T15:04:05Z"),
		LastUpdated:   lead.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if lead.Product != nil {
		dto.ProductName = lead.Product.Name
	}
	return dto
}

// ToProductDTO converts Product to ProductDTO
func ToProductDTO(product *domain.Product) domain.ProductDTO {
	return domain.ProductDTO{
		ID:       product.ID,
		Name:     product.Name,
		SKU:      product.SKU,
		Category: product.Category,
		Price:    product.Price,
		Weight:   product.Weight,
		InStock:  product.InStock,
		ImageURL: product.ImageURL,
	}
}

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:        customer.ID,
		Name:      customer.Name,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Address:   customer.Address,
		City:      customer.City,
		Notes:     customer.Notes,
		CreatedAt: customer.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: customer.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToTeamMemberDTO converts TeamMember to TeamMemberDTO
func ToTeamMemberDTO(member *domain.TeamMember) domain.TeamMemberDTO {
	return domain.TeamMemberDTO{
		ID:       member.ID,
		Name:     member.Name,
		Email:    member.Email,
		Phone:    member.Phone,
		Role:     member.Role,
		Floor:    member.Floor,
		IsActive: member.IsActive,
	}
}

// ToSalesReportDTO converts SalesReport to SalesReportDTO, including the
// enriched lead rows when they are loaded.
func ToSalesReportDTO(report *domain.SalesReport) domain.SalesReportDTO {
	dto := domain.SalesReportDTO{
		ID:          report.ID,
		Floor:       report.Floor,
		Period:      report.Period,
		StartDate:   report.StartDate.Format("2006-01-02"),
		EndDate:     report.EndDate.Format("2006-01-02"),
		Notes:       report.Notes,
		SubmittedBy: report.SubmittedBy,
		LeadCount:   report.LeadCount,
		TotalAmount: report.TotalAmount,
		WonCount:    report.WonCount,
		LostCount:   report.LostCount,
		CreatedAt:   report.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if len(report.Leads) > 0 {
		dto.Leads = make([]domain.ReportLeadDTO, len(report.Leads))
		for i := range report.Leads {
			dto.Leads[i] = ToReportLeadDTO(&report.Leads[i])
		}
	}
	return dto
}

// ToReportLeadDTO converts ReportLead to ReportLeadDTO
func ToReportLeadDTO(row *domain.ReportLead) domain.ReportLeadDTO {
	return domain.ReportLeadDTO{
		LeadID:          row.LeadID,
		CustomerName:    row.CustomerName,
		CustomerPhone:   row.CustomerPhone,
		ProductName:     row.ProductName,
		ProductPrice:    row.ProductPrice,
		Amount:          row.Amount,
		Stage:           row.Stage,
		SalespersonName: row.SalespersonName,
		LeadCreatedAt:   row.LeadCreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
