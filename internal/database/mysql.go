package database

import (
	"net"

	"github.com/go-sql-driver/mysql"
)

var mysqlDriver = driver{
	name:        "mysql",
	defaultPort: "3306",
	dsn:         mysqlDSN,
	tablesQuery: "SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() ORDER BY TABLE_NAME",
}

func mysqlDSN(cfg Config) (string, error) {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	c.DBName = cfg.Database
	c.ParseTime = true
	return c.FormatDSN(), nil
}
