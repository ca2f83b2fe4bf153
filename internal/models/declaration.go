package models

import (
	"time"

	"github.com/lib/pq"
)

// ============================================================================
// DECLARATIONS
// ============================================================================

type Declaration struct {
	ID                    int64             `json:"id" db:"id"`
	Type                  DeclarationType   `json:"type" db:"type"`
	Status                DeclarationStatus `json:"status" db:"status"`
	ProductName           *string           `json:"productName,omitempty" db:"product_name"`
	HSNCode               *string           `json:"hsnCode,omitempty" db:"hsn_code"`
	ScientificName        *string           `json:"scientificName,omitempty" db:"scientific_name"`
	Quantity              *float64          `json:"quantity,omitempty" db:"quantity"`
	Unit                  *string           `json:"unit,omitempty" db:"unit"`
	CustomerID            *int64            `json:"customerId,omitempty" db:"customer_id"`
	SupplierName          *string           `json:"supplierName,omitempty" db:"supplier_name"`
	CustomerPONumber      *string           `json:"customerPONumber,omitempty" db:"customer_po_number"`
	SONumber              *string           `json:"soNumber,omitempty" db:"so_number"`
	ShipmentNumber        *string           `json:"shipmentNumber,omitempty" db:"shipment_number"`
	StartDate             *time.Time        `json:"startDate,omitempty" db:"start_date"`
	EndDate               *time.Time        `json:"endDate,omitempty" db:"end_date"`
	Comments              *string           `json:"comments,omitempty" db:"comments"`
	BasedOnDeclarationIDs pq.Int64Array     `json:"basedOnDeclarationIds,omitempty" db:"based_on_declaration_ids"`
	GeoJSONFile           *string           `json:"geoJsonFile,omitempty" db:"geojson_file"`
	CreatedBy             *string           `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt             time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time         `json:"updatedAt" db:"updated_at"`

	Items     []DeclarationItem     `json:"items,omitempty" db:"-"`
	Documents []DeclarationDocument `json:"documents,omitempty" db:"-"`
}

type DeclarationItem struct {
	ID             int64   `json:"id" db:"id"`
	DeclarationID  int64   `json:"declarationId" db:"declaration_id"`
	Position       int     `json:"position" db:"position"`
	HSNCode        string  `json:"hsnCode" db:"hsn_code"`
	ProductName    string  `json:"productName" db:"product_name"`
	ScientificName *string `json:"scientificName,omitempty" db:"scientific_name"`
	Quantity       float64 `json:"quantity" db:"quantity"`
	Unit           string  `json:"unit" db:"unit"`
	RMID           *string `json:"rmId,omitempty" db:"rm_id"`
}

type DeclarationDocument struct {
	ID            int64     `json:"id" db:"id"`
	DeclarationID int64     `json:"declarationId" db:"declaration_id"`
	ObjectName    string    `json:"objectName" db:"object_name"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// InboundDeclarationSummary is the row shape offered to the wizard when an
// outbound declaration is based on existing approved inbound declarations.
type InboundDeclarationSummary struct {
	ID           int64             `json:"id" db:"id"`
	ProductName  string            `json:"productName" db:"product_name"`
	HSNCode      string            `json:"hsnCode" db:"hsn_code"`
	Status       DeclarationStatus `json:"status" db:"status"`
	Quantity     float64           `json:"quantity" db:"quantity"`
	Unit         string            `json:"unit" db:"unit"`
	SupplierName *string           `json:"supplierName,omitempty" db:"supplier_name"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
}
