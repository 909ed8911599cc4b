package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// OrderByTimeStampAsc returns chat messages in conversation order.
func OrderByTimeStampAsc(db *gorm.DB) *gorm.DB {
	return db.Order("time_stamp ASC")
}
