package server

//go:generate swag init -d ./ -g swagger.go -o ./docs --parseDependency --parseInternal

// @title Scan Confirmation API
// @version 0.1
// @description Email-confirmed scan requests: submit a scan, confirm it from the mailed link, follow its workflow.
// @contact.name scanconfirm maintainers
// @contact.url https://github.com/raysh454/scanconfirm
// @BasePath /
