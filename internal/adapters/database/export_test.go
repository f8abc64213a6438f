package database

var DSNLocation = dsnLocation
