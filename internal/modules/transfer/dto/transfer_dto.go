package dto

import "io"

type RequestInput struct {
	Reason string `form:"reason" json:"reason" binding:"required,min=10,max=2000"`
}

type ReviewInput struct {
	Note string `form:"note" json:"note" binding:"max=1000"`
}

type Upload struct {
	Reader   io.Reader
	FileName string
}
