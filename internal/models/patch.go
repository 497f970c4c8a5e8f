package models

// Patch structs carry only the fields a client supplied; nil means "leave as is".
// Apply merges field by field so partial updates never clobber unset columns.

type UserPatch struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
}

// Apply merges everything except Password, which needs hashing first.
func (p *UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
}

type ProductPatch struct {
	CategoryID  *uint    `json:"category_id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
}

func (p *ProductPatch) Apply(prod *Product) {
	if p.CategoryID != nil {
		prod.CategoryID = p.CategoryID
	}
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Image != nil {
		prod.Image = *p.Image
	}
}

type CategoryPatch struct {
	Name *string `json:"name"`
}

func (p *CategoryPatch) Apply(cat *Category) {
	if p.Name != nil {
		cat.Name = *p.Name
	}
}

type OrderPatch struct {
	ProductID *uint   `json:"product_id"`
	Quantity  *uint   `json:"quantity"`
	Status    *string `json:"status"`
}

func (p *OrderPatch) Apply(o *Order) {
	if p.ProductID != nil {
		o.ProductID = p.ProductID
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
}

type CartItemPatch struct {
	ProductID *uint `json:"product_id"`
	Quantity  *uint `json:"quantity"`
}

func (p *CartItemPatch) Apply(item *CartItem) {
	if p.ProductID != nil {
		item.ProductID = *p.ProductID
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
}

type CommentPatch struct {
	Rating *int    `json:"rating"`
	Text   *string `json:"text"`
}

func (p *CommentPatch) Apply(cm *Comment) {
	if p.Rating != nil {
		cm.Rating = *p.Rating
	}
	if p.Text != nil {
		cm.Text = *p.Text
	}
}
