package models

// ReplayInfo is one replayed statement as written by the replay loader.
// Times are in microseconds.
type ReplayInfo struct {
	SQLText       string `json:"sql" gorm:"column:sql_text;type:text"`
	SQLType       string `json:"sql_type" gorm:"column:sql_type;size:16"`
	SQLDigest     string `json:"digest" gorm:"column:sql_digest;size:64;index"`
	QueryTime     int64  `json:"query_time" gorm:"column:query_time"`
	RowsSent      int64  `json:"rows_sent" gorm:"column:rows_sent"`
	ExecutionTime int64  `json:"execution_time" gorm:"column:execution_time"`
	RowsReturned  int64  `json:"rows_returned" gorm:"column:rows_returned"`
	ErrorInfo     string `json:"error_info,omitempty" gorm:"column:error_info;type:text;not null;default:''"`
	FileName      string `json:"file_name" gorm:"column:file_name;size:64;not null"`
	DBName        string `json:"dbname" gorm:"column:db_name;size:64"`
}

// TableName specifies the table name for the ReplayInfo model
func (ReplayInfo) TableName() string {
	return "replay_info"
}

// Go4 is the older comparison table layout read by the classic catalog.
type Go4 struct {
	ReplayInfo
}

// TableName specifies the table name for the Go4 model
func (Go4) TableName() string {
	return "go4"
}
